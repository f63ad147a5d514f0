package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"

	"media-store/internal/config"
	domain "media-store/internal/domain/media"
	"media-store/internal/interfaces/httpserver/requests"
	"media-store/internal/interfaces/httpserver/responses"
	"media-store/internal/utils/platformerrors"
)

// MediaService is the subset of the media orchestrator the HTTP layer depends on.
type MediaService interface {
	Upload(ctx context.Context, req domain.UploadRequest) (*domain.MediaRecord, error)
	Get(ctx context.Context, namespace, id string) (*domain.MediaRecord, error)
	PresignURL(ctx context.Context, namespace, id string) (*domain.PresignedURL, error)
	Update(ctx context.Context, req domain.UpdateRequest) (*domain.MediaRecord, error)
	Disable(ctx context.Context, namespace, id string) (*domain.MediaRecord, error)
	ListByOwner(ctx context.Context, namespace, ownerID string) ([]*domain.MediaRecord, error)
	Download(ctx context.Context, namespace, id string) (io.ReadCloser, *domain.MediaRecord, error)
	Ready(ctx context.Context) error
}

// MediaHandler exposes media endpoints.
type MediaHandler struct {
	cfg     *config.Config
	service MediaService
	log     zerolog.Logger
}

func NewMediaHandler(cfg *config.Config, service MediaService, log zerolog.Logger) *MediaHandler {
	requests.RegisterValidators()
	return &MediaHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "media-handler").Logger(),
	}
}

// Upload godoc
// @Summary      Upload media
// @Description  Stores a file under {namespace}/{file name} and records its metadata.
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        namespace  path      string  true   "Namespace"
// @Param        file       formData  file    true   "File to upload"
// @Param        label      formData  string  true   "Label (alias: tag)"
// @Param        owner_id   formData  string  true   "Owner ID"
// @Success      201        {object}  responses.MediaResponse
// @Failure      400        {object}  responses.ErrorResponse
// @Failure      409        {object}  responses.ErrorResponse
// @Failure      503        {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/media/{namespace} [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	var uri requests.NamespaceURI
	if err := c.ShouldBindUri(&uri); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeInvalidInput, "invalid namespace", "3a0c1b7e-5d8f-4c1e-9a61-2b9f0e4d7c35")
		return
	}
	var req requests.UploadMediaRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeInvalidInput, "invalid upload form", "c5e27a90-41f6-4b0d-8e3c-7d1a9f6b2e48")
		return
	}

	file, closeFile, err := formFile(c)
	if err != nil {
		h.fail(c, err, "failed to read uploaded file")
		return
	}
	defer closeFile()

	record, err := h.service.Upload(c.Request.Context(), domain.UploadRequest{
		Namespace: uri.Namespace,
		Label:     req.LabelValue(),
		OwnerID:   req.OwnerID,
		File:      file,
	})
	if err != nil {
		h.fail(c, err, "upload failed")
		return
	}

	c.JSON(http.StatusCreated, responses.BuildMediaResponse(record))
}

// List godoc
// @Summary      List media by owner
// @Description  Returns the active media uploaded by an owner within a namespace.
// @Tags         media
// @Produce      json
// @Param        namespace  path      string  true  "Namespace"
// @Param        owner_id   query     string  true  "Owner ID"
// @Success      200        {object}  responses.MediaListResponse
// @Failure      400        {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/media/{namespace} [get]
func (h *MediaHandler) List(c *gin.Context) {
	var uri requests.NamespaceURI
	if err := c.ShouldBindUri(&uri); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeInvalidInput, "invalid namespace", "f2d9e4a1-0b3c-4e7f-8d6a-5c1b9e2f7a30")
		return
	}
	var query requests.ListMediaRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeInvalidInput, "invalid query", "7b4e1f2a-9c8d-4a3b-b6e5-0d2f1c9a8e47")
		return
	}

	records, err := h.service.ListByOwner(c.Request.Context(), uri.Namespace, query.OwnerID)
	if err != nil {
		h.fail(c, err, "list failed")
		return
	}

	c.JSON(http.StatusOK, responses.BuildMediaListResponse(records))
}

// Get godoc
// @Summary      Get media metadata
// @Description  Returns the metadata of an active media record.
// @Tags         media
// @Produce      json
// @Param        namespace  path      string  true  "Namespace"
// @Param        id         path      string  true  "Media ID (med_xxx)"
// @Success      200        {object}  responses.MediaResponse
// @Failure      404        {object}  responses.ErrorResponse
// @Failure      502        {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/media/{namespace}/{id} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	uri, ok := h.bindMediaURI(c)
	if !ok {
		return
	}

	record, err := h.service.Get(c.Request.Context(), uri.Namespace, uri.ID)
	if err != nil {
		h.fail(c, err, "lookup failed")
		return
	}

	c.JSON(http.StatusOK, responses.BuildMediaResponse(record))
}

// GetPresignedURL godoc
// @Summary      Get presigned download URL
// @Description  Returns a temporary signed URL for an active media record.
// @Tags         media
// @Produce      json
// @Param        namespace  path      string  true  "Namespace"
// @Param        id         path      string  true  "Media ID (med_xxx)"
// @Success      200        {object}  responses.PresignedURLResponse
// @Failure      404        {object}  responses.ErrorResponse
// @Failure      502        {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/media/{namespace}/{id}/url [get]
func (h *MediaHandler) GetPresignedURL(c *gin.Context) {
	uri, ok := h.bindMediaURI(c)
	if !ok {
		return
	}

	url, err := h.service.PresignURL(c.Request.Context(), uri.Namespace, uri.ID)
	if err != nil {
		h.fail(c, err, "presign failed")
		return
	}

	c.JSON(http.StatusOK, responses.BuildPresignedURLResponse(url))
}

// Content godoc
// @Summary      Stream media bytes
// @Description  Streams the payload through the API, or redirects to a signed URL when proxying is disabled.
// @Tags         media
// @Produce      octet-stream
// @Param        namespace  path  string  true  "Namespace"
// @Param        id         path  string  true  "Media ID (med_xxx)"
// @Success      200  "binary data"
// @Success      302  "redirect to a signed URL"
// @Failure      404  {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/media/{namespace}/{id}/content [get]
func (h *MediaHandler) Content(c *gin.Context) {
	uri, ok := h.bindMediaURI(c)
	if !ok {
		return
	}

	if !h.cfg.ProxyDownload {
		url, err := h.service.PresignURL(c.Request.Context(), uri.Namespace, uri.ID)
		if err != nil {
			h.fail(c, err, "presign failed")
			return
		}
		c.Redirect(http.StatusFound, url.URL)
		return
	}

	reader, record, err := h.service.Download(c.Request.Context(), uri.Namespace, uri.ID)
	if err != nil {
		h.fail(c, err, "download failed")
		return
	}
	defer reader.Close()

	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": record.FileName}))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.log.Error().Err(err).Str("id", record.ID).Msg("stream error")
	}
}

// Update godoc
// @Summary      Replace media
// @Description  Replaces the payload and label of an active record. The previous payload is archived under the disabled prefix.
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        namespace  path      string  true  "Namespace"
// @Param        id         path      string  true  "Media ID (med_xxx)"
// @Param        file       formData  file    true  "Replacement file"
// @Param        label      formData  string  true  "Label (alias: tag)"
// @Success      200        {object}  responses.MediaResponse
// @Failure      400        {object}  responses.ErrorResponse
// @Failure      404        {object}  responses.ErrorResponse
// @Failure      409        {object}  responses.ErrorResponse
// @Failure      503        {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/media/{namespace}/{id} [put]
func (h *MediaHandler) Update(c *gin.Context) {
	uri, ok := h.bindMediaURI(c)
	if !ok {
		return
	}
	var req requests.UpdateMediaRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeInvalidInput, "invalid update form", "0e6b3d2c-8a4f-4f91-a7c5-3b2e9d1f6c84")
		return
	}

	file, closeFile, err := formFile(c)
	if err != nil {
		h.fail(c, err, "failed to read uploaded file")
		return
	}
	defer closeFile()

	record, err := h.service.Update(c.Request.Context(), domain.UpdateRequest{
		Namespace: uri.Namespace,
		ID:        uri.ID,
		Label:     req.LabelValue(),
		File:      file,
	})
	if err != nil {
		h.fail(c, err, "update failed")
		return
	}

	c.JSON(http.StatusOK, responses.BuildMediaResponse(record))
}

// Disable godoc
// @Summary      Disable media
// @Description  Moves the payload under the disabled prefix and marks the record inactive.
// @Tags         media
// @Produce      json
// @Param        namespace  path      string  true  "Namespace"
// @Param        id         path      string  true  "Media ID (med_xxx)"
// @Success      200        {object}  responses.MediaResponse
// @Failure      404        {object}  responses.ErrorResponse
// @Failure      503        {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/media/{namespace}/{id} [delete]
func (h *MediaHandler) Disable(c *gin.Context) {
	uri, ok := h.bindMediaURI(c)
	if !ok {
		return
	}

	record, err := h.service.Disable(c.Request.Context(), uri.Namespace, uri.ID)
	if err != nil {
		h.fail(c, err, "disable failed")
		return
	}

	c.JSON(http.StatusOK, responses.BuildMediaResponse(record))
}

// Ready reports whether the metadata and object stores are reachable.
func (h *MediaHandler) Ready(c *gin.Context) {
	if err := h.service.Ready(c.Request.Context()); err != nil {
		h.log.Warn().Err(err).Msg("readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *MediaHandler) bindMediaURI(c *gin.Context) (requests.MediaURI, bool) {
	var uri requests.MediaURI
	if err := c.ShouldBindUri(&uri); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeInvalidInput, "invalid namespace or media id", "5d7a2c9e-3f1b-4b8a-a0e6-9c4d2f7b1e53")
		return uri, false
	}
	return uri, true
}

func (h *MediaHandler) fail(c *gin.Context, err error, message string) {
	if platformErr := platformerrors.GetPlatformError(err); platformErr != nil {
		platformerrors.LogError(h.log, platformErr)
	} else {
		h.log.Error().Err(err).Msg(message)
	}
	responses.HandleError(c, err, message)
}

// formFile opens the "file" part. A missing part yields a nil upload so the service
// reports it with the rest of the file validation.
func formFile(c *gin.Context) (*domain.FileUpload, func(), error) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeInvalidFile,
			"malformed multipart body", err, "a8f3e1d5-6c2b-4e9a-b7d0-1f5c3a8e2b96")
	}
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeInvalidFile,
			"failed to open uploaded file", err, "e4b9c7a2-1d6f-4a3e-8c5b-7f2a0d9e6b13")
	}
	return &domain.FileUpload{
		Name: header.Filename,
		Size: header.Size,
		Body: f,
	}, func() { _ = f.Close() }, nil
}
