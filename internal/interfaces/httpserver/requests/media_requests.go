package requests

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"media-store/internal/domain/media"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator engine.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("namespace", func(fl validator.FieldLevel) bool {
				return media.ValidateNamespace(fl.Field().String()) == nil
			})
		}
	})
}

// NamespaceURI binds the namespace path segment.
type NamespaceURI struct {
	Namespace string `uri:"namespace" binding:"required,namespace"`
}

// MediaURI binds the namespace and record id path segments.
type MediaURI struct {
	Namespace string `uri:"namespace" binding:"required,namespace"`
	ID        string `uri:"id" binding:"required"`
}

// UploadMediaRequest holds the non-file multipart fields of an upload.
// The file itself is read from the "file" part.
type UploadMediaRequest struct {
	Label   string `form:"label" binding:"max=255"`
	Tag     string `form:"tag" binding:"max=255"`
	OwnerID string `form:"owner_id" binding:"max=128"`
}

// LabelValue accepts "tag" as an alias for "label".
func (r *UploadMediaRequest) LabelValue() string {
	if label := strings.TrimSpace(r.Label); label != "" {
		return label
	}
	return strings.TrimSpace(r.Tag)
}

// UpdateMediaRequest holds the non-file multipart fields of an update.
type UpdateMediaRequest struct {
	Label string `form:"label" binding:"max=255"`
	Tag   string `form:"tag" binding:"max=255"`
}

func (r *UpdateMediaRequest) LabelValue() string {
	if label := strings.TrimSpace(r.Label); label != "" {
		return label
	}
	return strings.TrimSpace(r.Tag)
}

// ListMediaRequest filters active media by owner.
type ListMediaRequest struct {
	OwnerID string `form:"owner_id" binding:"max=128"`
}
