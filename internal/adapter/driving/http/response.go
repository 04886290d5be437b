package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ShepherdDev/rock-labs-forums/internal/application"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// TopicResponse is the JSON representation of a forum topic. The rendered
// fields are populated only on the single topic endpoint.
type TopicResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  int64  `json:"category_id"`
	AuthorName  string `json:"author_name,omitempty"`
	CreatedAt   string `json:"created_at"`

	DescriptionHTML string `json:"description_html,omitempty"`
	CreatedText     string `json:"created_text,omitempty"`
}

// CreateTopicRequest is the JSON body for the create topic endpoint.
type CreateTopicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  int64  `json:"category_id"`
}

// NoteResponse is the JSON representation of one thread entry. Text carries
// the raw markdown for editing; HTML carries the sanitized rendering for
// display.
type NoteResponse struct {
	ID           int64  `json:"id"`
	Guid         string `json:"guid"`
	ItemID       int64  `json:"item_id"`
	Text         string `json:"text"`
	HTML         string `json:"html"`
	NoteType     string `json:"note_type"`
	CSSClass     string `json:"css_class,omitempty"`
	IconCSSClass string `json:"icon_css_class,omitempty"`
	AuthorName   string `json:"author_name,omitempty"`
	CreatedAt    string `json:"created_at"`
	PostedText   string `json:"posted_text,omitempty"`
	CanDelete    bool   `json:"can_delete"`
}

// PostCommentRequest is the JSON body for the post comment endpoint.
type PostCommentRequest struct {
	Text          string  `json:"text"`
	AttachmentIDs []int64 `json:"attachment_ids"`
}

// FollowStateResponse reports a person's follow state on an item.
type FollowStateResponse struct {
	Following bool `json:"following"`
}

// RegisterAttachmentRequest is the JSON body for the attachment endpoint.
type RegisterAttachmentRequest struct {
	FileName string `json:"file_name"`
}

// AttachmentResponse is the JSON representation of a registered attachment.
type AttachmentResponse struct {
	ID          int64  `json:"id"`
	Guid        string `json:"guid"`
	FileName    string `json:"file_name"`
	URL         string `json:"url"`
	IsTemporary bool   `json:"is_temporary"`
}

// CreatePersonRequest is the JSON body for the person provisioning endpoint.
type CreatePersonRequest struct {
	Name string `json:"name"`
}

// PersonResponse is the JSON representation of a provisioned person.
type PersonResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	PrimaryAliasID int64  `json:"primary_alias_id"`
}

// PreviewRequest is the JSON body for the preview endpoint.
type PreviewRequest struct {
	Text string `json:"text"`
}

// PreviewResponse carries the rendered preview HTML.
type PreviewResponse struct {
	HTML string `json:"html"`
}

// toTopicResponse converts a domain Topic to its JSON representation.
func toTopicResponse(topic model.Topic) TopicResponse {
	return TopicResponse{
		ID:          topic.ID,
		Name:        topic.Name,
		Description: topic.Description,
		CategoryID:  topic.CategoryID,
		AuthorName:  topic.AuthorName,
		CreatedAt:   topic.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toNoteResponse converts a rendered thread entry to its JSON representation.
func toNoteResponse(note application.RenderedNote) NoteResponse {
	return NoteResponse{
		ID:           note.ID,
		Guid:         note.Guid,
		ItemID:       note.ItemID,
		Text:         note.Text,
		HTML:         note.HTML,
		NoteType:     note.NoteType.Name,
		CSSClass:     note.NoteType.CSSClass,
		IconCSSClass: note.NoteType.IconCSSClass,
		AuthorName:   note.AuthorName,
		CreatedAt:    note.CreatedAt.UTC().Format(time.RFC3339),
		PostedText:   note.PostedText,
		CanDelete:    note.CanDelete,
	}
}

// toAttachmentResponse converts a domain Attachment to its JSON representation.
func toAttachmentResponse(att model.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          att.ID,
		Guid:        att.Guid,
		FileName:    att.FileName,
		URL:         model.AttachmentURL(att.ID),
		IsTemporary: att.IsTemporary,
	}
}
