// Package httphandler is the HTTP driving adapter that serves the REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ShepherdDev/rock-labs-forums/internal/application"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
)

// personHeader carries the acting person's id. Authentication happens
// upstream; this service trusts the header.
const personHeader = "X-Person-ID"

// Handler is the HTTP driving adapter. It translates requests into service
// calls and service errors into status codes; no domain logic lives here.
type Handler struct {
	comments    *application.CommentService
	topics      *application.TopicService
	follows     *application.FollowService
	attachments driven.AttachmentStore
	persons     driven.PersonStore
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	comments *application.CommentService,
	topics *application.TopicService,
	follows *application.FollowService,
	attachments driven.AttachmentStore,
	persons driven.PersonStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		comments:    comments,
		topics:      topics,
		follows:     follows,
		attachments: attachments,
		persons:     persons,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/topics", h.ListTopics)
	mux.HandleFunc("POST /api/v1/topics", h.CreateTopic)
	mux.HandleFunc("GET /api/v1/topics/{id}", h.GetTopic)
	mux.HandleFunc("DELETE /api/v1/topics/{id}", h.DeleteTopic)

	mux.HandleFunc("GET /api/v1/topics/{id}/comments", h.ListComments)
	mux.HandleFunc("POST /api/v1/topics/{id}/comments", h.PostComment)
	mux.HandleFunc("DELETE /api/v1/comments/{id}", h.DeleteComment)

	mux.HandleFunc("GET /api/v1/topics/{id}/follow", h.GetFollowState)
	mux.HandleFunc("PUT /api/v1/topics/{id}/follow", h.Follow)
	mux.HandleFunc("DELETE /api/v1/topics/{id}/follow", h.Unfollow)
	mux.HandleFunc("POST /api/v1/topics/{id}/follow/toggle", h.ToggleFollow)

	mux.HandleFunc("POST /api/v1/attachments", h.RegisterAttachment)
	mux.HandleFunc("POST /api/v1/persons", h.CreatePerson)
	mux.HandleFunc("POST /api/v1/preview", h.Preview)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// ListTopics returns the topics in a category, newest first.
func (h *Handler) ListTopics(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(r.URL.Query().Get("category"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid category parameter")
		return
	}

	topics, err := h.topics.ListByCategory(r.Context(), categoryID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]TopicResponse, 0, len(topics))
	for _, topic := range topics {
		resp = append(resp, toTopicResponse(topic))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTopic opens a new topic owned by the acting person.
func (h *Handler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	personID, ok := h.requirePerson(w, r)
	if !ok {
		return
	}

	var req CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	topic, err := h.topics.Create(r.Context(), application.CreateTopicInput{
		Name:            req.Name,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		CreatorPersonID: personID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTopicResponse(topic))
}

// GetTopic returns a single topic with its description rendered.
func (h *Handler) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	topic, err := h.topics.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := toTopicResponse(topic.Topic)
	resp.DescriptionHTML = topic.DescriptionHTML
	resp.CreatedText = topic.CreatedText
	writeJSON(w, http.StatusOK, resp)
}

// DeleteTopic removes a topic. Creator and administrators only.
func (h *Handler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	personID, ok := h.requirePerson(w, r)
	if !ok {
		return
	}

	if err := h.topics.Delete(r.Context(), id, personID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListComments returns the topic's comment thread rendered for the viewer.
// Anonymous viewers get the public subset.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	viewerID, _ := personID(r)

	thread, err := h.comments.ListThread(r.Context(), model.ItemTypeTopic, id, viewerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]NoteResponse, 0, len(thread))
	for _, note := range thread {
		resp = append(resp, toNoteResponse(note))
	}
	writeJSON(w, http.StatusOK, resp)
}

// PostComment runs the posting workflow for the acting person.
func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	authorID, ok := h.requirePerson(w, r)
	if !ok {
		return
	}

	var req PostCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	note, err := h.comments.PostComment(r.Context(), application.PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         id,
		Text:           req.Text,
		AuthorPersonID: authorID,
		AttachmentIDs:  req.AttachmentIDs,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNoteResponse(application.RenderedNote{
		Note: note,
		HTML: h.comments.Preview(note.Text),
	}))
}

// DeleteComment removes a comment. Author and administrators only.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	viewerID, ok := h.requirePerson(w, r)
	if !ok {
		return
	}

	if err := h.comments.DeleteComment(r.Context(), id, viewerID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFollowState reports whether the acting person follows the topic.
func (h *Handler) GetFollowState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	viewerID, ok := h.requirePerson(w, r)
	if !ok {
		return
	}

	following, err := h.follows.IsFollowing(r.Context(), model.ItemTypeTopic, id, viewerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FollowStateResponse{Following: following})
}

// Follow subscribes the acting person to the topic. Idempotent.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	viewerID, ok := h.requirePerson(w, r)
	if !ok {
		return
	}

	if err := h.follows.Follow(r.Context(), model.ItemTypeTopic, id, viewerID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FollowStateResponse{Following: true})
}

// Unfollow removes the acting person's subscription. Idempotent.
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	viewerID, ok := h.requirePerson(w, r)
	if !ok {
		return
	}

	if err := h.follows.Unfollow(r.Context(), model.ItemTypeTopic, id, viewerID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FollowStateResponse{Following: false})
}

// ToggleFollow flips the acting person's follow state and returns the new one.
func (h *Handler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	viewerID, ok := h.requirePerson(w, r)
	if !ok {
		return
	}

	following, err := h.follows.Toggle(r.Context(), model.ItemTypeTopic, id, viewerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FollowStateResponse{Following: following})
}

// RegisterAttachment records an uploaded file as temporary and returns the
// URL the comment editor should reference it by.
func (h *Handler) RegisterAttachment(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requirePerson(w, r); !ok {
		return
	}

	var req RegisterAttachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FileName == "" {
		writeError(w, http.StatusBadRequest, "file_name is required")
		return
	}

	att, err := h.attachments.Create(r.Context(), req.FileName)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttachmentResponse(att))
}

// CreatePerson provisions a person together with their primary alias.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	person, err := h.persons.CreatePerson(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, PersonResponse{
		ID:             person.ID,
		Name:           person.Name,
		PrimaryAliasID: person.PrimaryAliasID,
	})
}

// Preview renders comment text without saving it.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	writeJSON(w, http.StatusOK, PreviewResponse{HTML: h.comments.Preview(req.Text)})
}

// personID extracts the acting person from the request header.
func personID(r *http.Request) (int64, bool) {
	raw := r.Header.Get(personHeader)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requirePerson extracts the acting person or writes a 401.
func (h *Handler) requirePerson(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := personID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid "+personHeader+" header")
		return 0, false
	}
	return id, true
}

// pathID parses the {id} path segment or writes a 400.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// writeServiceError maps application errors to status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *application.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, driven.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, application.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
