package models

import (
	"errors"
	"io"
)

// UploadStatus is the lifecycle of one queued upload.
type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadCompleted UploadStatus = "completed"
	UploadError     UploadStatus = "error"
)

// IsFinished reports whether the status is terminal.
func (s UploadStatus) IsFinished() bool {
	return s == UploadCompleted || s == UploadError
}

// Upload is one file offered for ingestion. Size is the declared length; a
// negative value means unknown. Open, when set, is preferred over Content so
// the upload can be read again on retry. Content stays owned by the caller
// and is never closed by ingestion.
type Upload struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
	Open     func() (io.ReadCloser, error)
}

// Reader returns a stream for the upload payload. Seekable content is
// rewound so a retried upload reads it from the start.
func (u Upload) Reader() (io.ReadCloser, error) {
	if u.Open != nil {
		return u.Open()
	}
	if u.Content == nil {
		return nil, errors.New("upload has no content")
	}
	if seeker, ok := u.Content.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return io.NopCloser(u.Content), nil
}

// UploadItem tracks one file in an upload queue.
type UploadItem struct {
	ID       string       `json:"id"`
	Filename string       `json:"filename"`
	Size     int64        `json:"size"`
	Status   UploadStatus `json:"status"`
	Message  string       `json:"message,omitempty"`
	MediaID  string       `json:"media_id,omitempty"`
}

// UploadProgress is reported after every item of a queue run.
type UploadProgress struct {
	Completed int        `json:"completed"`
	Total     int        `json:"total"`
	Item      UploadItem `json:"item"`
}

// Percent returns completion in the range 0..100.
func (p UploadProgress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return p.Completed * 100 / p.Total
}
