package responses

import (
	"time"

	"media-store/internal/domain/media"
)

// MediaResponse is the public view of a media record.
type MediaResponse struct {
	ID          string     `json:"id"`
	Namespace   string     `json:"namespace"`
	ObjectKey   string     `json:"object_key"`
	FileName    string     `json:"file_name"`
	Kind        string     `json:"kind"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	OwnerID     string     `json:"owner_id"`
	Label       string     `json:"label"`
	Active      bool       `json:"active"`
	DisabledAt  *time.Time `json:"disabled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BuildMediaResponse creates response from domain object
func BuildMediaResponse(record *media.MediaRecord) *MediaResponse {
	return &MediaResponse{
		ID:          record.ID,
		Namespace:   record.Namespace,
		ObjectKey:   record.ObjectKey,
		FileName:    record.FileName,
		Kind:        string(record.Kind),
		ContentType: record.ContentType,
		SizeBytes:   record.SizeBytes,
		OwnerID:     record.OwnerID,
		Label:       record.Label,
		Active:      record.Active,
		DisabledAt:  record.DisabledAt,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

// MediaListResponse wraps a list of records.
type MediaListResponse struct {
	Data  []*MediaResponse `json:"data"`
	Total int              `json:"total"`
}

func BuildMediaListResponse(records []*media.MediaRecord) *MediaListResponse {
	data := make([]*MediaResponse, 0, len(records))
	for _, record := range records {
		data = append(data, BuildMediaResponse(record))
	}
	return &MediaListResponse{Data: data, Total: len(data)}
}

// PresignedURLResponse contains presigned URL
type PresignedURLResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// BuildPresignedURLResponse creates presigned URL response
func BuildPresignedURLResponse(url *media.PresignedURL) *PresignedURLResponse {
	return &PresignedURLResponse{
		ID:        url.ID,
		URL:       url.URL,
		ExpiresIn: url.ExpiresIn,
	}
}
