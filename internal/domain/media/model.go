package media

import (
	"io"
	"time"
)

// Kind is the coarse media category derived from a file extension.
type Kind string

const (
	KindImage Kind = "IMAGE"
	KindVideo Kind = "VIDEO"
	KindAudio Kind = "AUDIO"
)

// MediaRecord represents stored media metadata.
type MediaRecord struct {
	ID          string     `json:"id"`
	Namespace   string     `json:"namespace"`
	ObjectKey   string     `json:"object_key"`
	FileName    string     `json:"file_name"`
	Kind        Kind       `json:"kind"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	OwnerID     string     `json:"owner_id"`
	Label       string     `json:"label"`
	Active      bool       `json:"active"`
	DisabledAt  *time.Time `json:"disabled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FileUpload is an uploaded byte stream with its declared name and size.
type FileUpload struct {
	Name string
	Size int64
	Body io.Reader
}

// UploadRequest defines the input of the upload workflow.
type UploadRequest struct {
	Namespace string
	Label     string
	OwnerID   string
	File      *FileUpload
}

// UpdateRequest defines the input of the update workflow.
type UpdateRequest struct {
	Namespace string
	ID        string
	Label     string
	File      *FileUpload
}

// PresignedURL is a time-limited read URL for one record.
type PresignedURL struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// ObjectInfo describes one object listed from storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ReconcileReport summarises one orphan reconciliation sweep.
type ReconcileReport struct {
	Scanned   int `json:"scanned"`
	Orphaned  int `json:"orphaned"`
	Relocated int `json:"relocated"`
	Failed    int `json:"failed"`
}
