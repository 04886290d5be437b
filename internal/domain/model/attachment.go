package model

import (
	"fmt"
	"time"
)

// Attachment is the record of an uploaded file. Files start temporary and are
// promoted to permanent once a saved comment actually references them;
// temporary files are subject to external cleanup.
type Attachment struct {
	ID          int64
	Guid        string
	FileName    string
	IsTemporary bool
	CreatedAt   time.Time
}

// AttachmentRef returns the exact substring the attachment-link markup places
// in comment text for the given file. The trailing ")" anchors the match to
// the end of a markdown link destination so file id 4 does not match a
// reference to file 42.
func AttachmentRef(fileID int64) string {
	return fmt.Sprintf("/files/%d)", fileID)
}

// AttachmentURL returns the download path for the given file, as used in the
// markdown link the editor inserts.
func AttachmentURL(fileID int64) string {
	return fmt.Sprintf("/files/%d", fileID)
}
