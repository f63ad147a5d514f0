package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"media-store/internal/config"
	"media-store/internal/infrastructure/metrics"
	"media-store/internal/utils/platformerrors"
	"media-store/utils/mediaid"
)

// Repository defines persistence operations needed by the service.
// Find* methods return (nil, nil) when no active record matches.
type Repository interface {
	FindActiveByKey(ctx context.Context, namespace, objectKey string) (*MediaRecord, error)
	FindActiveByID(ctx context.Context, namespace, id string) (*MediaRecord, error)
	ExistsActiveByKey(ctx context.Context, namespace, objectKey string) (bool, error)
	Create(ctx context.Context, record *MediaRecord) error
	Save(ctx context.Context, record *MediaRecord) error
	Deactivate(ctx context.Context, namespace, id string, at time.Time) error
	ListActiveByOwner(ctx context.Context, namespace, ownerID string) ([]*MediaRecord, error)
	Ping(ctx context.Context) error
}

// Storage defines media storage operations against a single, preconfigured bucket.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Health(ctx context.Context) error
}

// Service orchestrates the object store and the metadata store for every media workflow.
type Service struct {
	cfg     *config.Config
	repo    Repository
	storage Storage
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(cfg *config.Config, repo Repository, storage Storage, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		storage: storage,
		log:     log.With().Str("component", "media-service").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type preparedFile struct {
	name        string
	kind        Kind
	contentType string
	data        []byte
}

// Upload stores a new payload and inserts its active metadata record.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*MediaRecord, error) {
	data, name, err := s.readFile(ctx, req.File)
	if err != nil {
		return nil, err
	}

	namespace := strings.TrimSpace(req.Namespace)
	label := strings.TrimSpace(req.Label)
	ownerID := strings.TrimSpace(req.OwnerID)
	if err := ValidateNamespace(namespace); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "upload rejected")
	}
	if label == "" {
		return nil, s.newError(ctx, platformerrors.ErrorTypeInvalidInput, "label is required", nil, "fd1798d3-5c18-4d7a-8d12-48eabcc72fdf")
	}
	if ownerID == "" {
		return nil, s.newError(ctx, platformerrors.ErrorTypeInvalidInput, "owner id is required", nil, "3df5ff13-e110-48c7-8395-0b4427baf60a")
	}
	if err := ValidateLength("label", label, MaxLabelLength); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "upload rejected")
	}
	if err := ValidateLength("owner id", ownerID, MaxOwnerIDLength); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "upload rejected")
	}

	file, key, err := s.prepare(ctx, namespace, name, data)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsActiveByKey(ctx, namespace, key)
	if err != nil {
		return nil, s.readError(ctx, err, "failed to check for duplicate media", "c1a4e7b2-5d8f-4a3c-9e6b-2f7d0a1c4b85")
	}
	if exists {
		metrics.RecordUpload(string(file.kind), "duplicate", 0)
		return nil, s.duplicateError(ctx, namespace, key)
	}

	size := int64(len(file.data))
	if err := s.storage.Upload(ctx, key, bytes.NewReader(file.data), size, file.contentType); err != nil {
		metrics.RecordUpload(string(file.kind), "failed", 0)
		return nil, s.newErrorWithContext(ctx, platformerrors.ErrorTypeStorageWrite, "failed to write object to storage", err,
			"6778a457-acf2-4f78-ba20-b4de6fd04d0f", map[string]any{"object_key": key})
	}

	record := &MediaRecord{
		ID:          mediaid.New(),
		Namespace:   namespace,
		ObjectKey:   key,
		FileName:    file.name,
		Kind:        file.kind,
		ContentType: file.contentType,
		SizeBytes:   size,
		OwnerID:     ownerID,
		Label:       label,
		Active:      true,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		metrics.RecordUpload(string(file.kind), "failed", 0)
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeDuplicateResource) {
			s.log.Warn().
				Str("namespace", namespace).
				Str("object_key", key).
				Msg("concurrent upload lost the insert race; payload under the key was overwritten")
			return nil, s.duplicateError(ctx, namespace, key)
		}
		s.logOrphan(key, "metadata_insert_failed", err)
		return nil, s.newErrorWithContext(ctx, platformerrors.ErrorTypeStorageWrite, "failed to persist media metadata", err,
			"51f6827f-cdcc-491c-b10e-f060f4e002db", map[string]any{"object_key": key})
	}

	metrics.RecordUpload(string(file.kind), "success", size)
	s.log.Info().
		Str("id", record.ID).
		Str("namespace", namespace).
		Str("object_key", key).
		Int64("bytes", size).
		Msg("media uploaded")
	return record, nil
}

// PresignURL returns a signed GET URL for an active record.
func (s *Service) PresignURL(ctx context.Context, namespace, id string) (*PresignedURL, error) {
	record, err := s.lookupActive(ctx, namespace, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := s.storage.PresignGet(ctx, record.ObjectKey, s.cfg.S3PresignTTL)
	if err != nil {
		return nil, s.newErrorWithContext(ctx, platformerrors.ErrorTypeStorageConnection, "failed to sign media url", err,
			"2e575dce-78ef-4b85-962c-c0b217db9c4d", map[string]any{"object_key": record.ObjectKey})
	}
	metrics.RecordPresign(time.Since(start).Seconds())

	return &PresignedURL{
		ID:        record.ID,
		URL:       s.externalizeURL(raw),
		ExpiresIn: int(s.cfg.S3PresignTTL.Seconds()),
	}, nil
}

// Update replaces the payload of an active record. The previous payload is archived under
// a record and time scoped path below the disabled prefix: it is copied before the new
// bytes are written and removed from its live key only after the record points at the new key.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*MediaRecord, error) {
	record, err := s.lookupActive(ctx, req.Namespace, req.ID)
	if err != nil {
		return nil, err
	}

	data, name, err := s.readFile(ctx, req.File)
	if err != nil {
		return nil, err
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, s.newError(ctx, platformerrors.ErrorTypeInvalidInput, "label is required", nil, "b19edc19-77e0-4734-a8c5-4beb165bca6c")
	}
	if err := ValidateLength("label", label, MaxLabelLength); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update rejected")
	}

	file, newKey, err := s.prepare(ctx, record.Namespace, name, data)
	if err != nil {
		return nil, err
	}

	oldKey := record.ObjectKey
	keyChanged := newKey != oldKey
	if keyChanged {
		exists, err := s.repo.ExistsActiveByKey(ctx, record.Namespace, newKey)
		if err != nil {
			return nil, s.readError(ctx, err, "failed to check for duplicate media", "f6b2d8e1-7a3c-4f5e-b9d0-4c1e8a2f6b73")
		}
		if exists {
			return nil, s.duplicateError(ctx, record.Namespace, newKey)
		}
	}

	archiveKey := ArchiveKey(oldKey, record.ID, s.now())
	if err := s.storage.Copy(ctx, oldKey, archiveKey); err != nil {
		return nil, s.newErrorWithContext(ctx, platformerrors.ErrorTypeStorageWrite, "failed to archive previous media payload", err,
			"05abda7a-6188-4ea4-89b5-97c58efa8b13", map[string]any{"object_key": oldKey, "archive_key": archiveKey})
	}

	size := int64(len(file.data))
	if err := s.storage.Upload(ctx, newKey, bytes.NewReader(file.data), size, file.contentType); err != nil {
		metrics.RecordUpload(string(file.kind), "failed", 0)
		return nil, s.newErrorWithContext(ctx, platformerrors.ErrorTypeStorageWrite, "failed to write object to storage", err,
			"6411b64b-d20d-4474-b615-da207e518bfd", map[string]any{"object_key": newKey})
	}

	updated := *record
	updated.ObjectKey = newKey
	updated.FileName = file.name
	updated.Kind = file.kind
	updated.ContentType = file.contentType
	updated.SizeBytes = size
	updated.Label = label

	if err := s.repo.Save(ctx, &updated); err != nil {
		metrics.RecordUpload(string(file.kind), "failed", 0)
		switch {
		case platformerrors.IsErrorType(err, platformerrors.ErrorTypeDuplicateResource):
			return nil, s.duplicateError(ctx, record.Namespace, newKey)
		case platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound):
			return nil, s.notFoundError(ctx, record.Namespace, record.ID)
		}
		if keyChanged {
			s.logOrphan(newKey, "metadata_update_failed", err)
		} else {
			s.log.Error().
				Err(err).
				Str("event", "payload_overwritten_record_stale").
				Str("id", record.ID).
				Str("object_key", newKey).
				Str("archive_key", archiveKey).
				Int64("record_bytes", record.SizeBytes).
				Int64("payload_bytes", size).
				Msg("live payload replaced but the record still describes the previous payload")
		}
		return nil, s.newErrorWithContext(ctx, platformerrors.ErrorTypeStorageWrite, "failed to persist media metadata", err,
			"d458536d-5ffa-48c2-bd84-2f82719f847a", map[string]any{"object_key": newKey})
	}

	if keyChanged {
		if err := s.storage.Delete(ctx, oldKey); err != nil {
			s.logOrphan(oldKey, "previous_payload_delete_failed", err)
		}
	}

	metrics.RecordUpload(string(file.kind), "success", size)
	s.log.Info().
		Str("id", updated.ID).
		Str("namespace", updated.Namespace).
		Str("previous_key", oldKey).
		Str("object_key", newKey).
		Msg("media updated")
	return &updated, nil
}

// Disable moves the payload under the disabled prefix, then marks the record inactive.
func (s *Service) Disable(ctx context.Context, namespace, id string) (*MediaRecord, error) {
	record, err := s.lookupActive(ctx, namespace, id)
	if err != nil {
		return nil, err
	}

	archiveKey := DisabledKey(record.ObjectKey)
	if err := s.storage.Copy(ctx, record.ObjectKey, archiveKey); err != nil {
		// A concurrent disable may already have moved the payload.
		if current, lookupErr := s.repo.FindActiveByID(ctx, record.Namespace, record.ID); lookupErr == nil && current == nil {
			return nil, s.notFoundError(ctx, record.Namespace, record.ID)
		}
		return nil, s.newErrorWithContext(ctx, platformerrors.ErrorTypeStorageMove, "failed to copy media payload to the disabled prefix", err,
			"87cc67e4-fc77-4c24-8f48-e1d83fbd7451", map[string]any{"object_key": record.ObjectKey, "archive_key": archiveKey})
	}
	if err := s.storage.Delete(ctx, record.ObjectKey); err != nil {
		return nil, s.newErrorWithContext(ctx, platformerrors.ErrorTypeStorageMove, "failed to remove media payload after copy", err,
			"c3e63d81-05cc-4fac-a798-a08cb1d8e943", map[string]any{"object_key": record.ObjectKey, "archive_key": archiveKey})
	}

	disabledAt := s.now()
	if err := s.repo.Deactivate(ctx, record.Namespace, record.ID, disabledAt); err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, s.notFoundError(ctx, record.Namespace, record.ID)
		}
		s.log.Error().
			Err(err).
			Str("event", "payload_moved_record_active").
			Str("id", record.ID).
			Str("object_key", record.ObjectKey).
			Str("archive_key", archiveKey).
			Msg("payload moved to the disabled prefix but the record is still active")
		return nil, s.newErrorWithContext(ctx, platformerrors.ErrorTypeStorageWrite, "failed to mark media as disabled", err,
			"ff4bcd76-6cdd-4d5d-9cf9-437211d782b4", map[string]any{"id": record.ID})
	}

	record.Active = false
	record.DisabledAt = &disabledAt
	s.log.Info().
		Str("id", record.ID).
		Str("namespace", record.Namespace).
		Str("archive_key", archiveKey).
		Msg("media disabled")
	return record, nil
}

// ListByOwner returns the active records uploaded by an owner within a namespace.
func (s *Service) ListByOwner(ctx context.Context, namespace, ownerID string) ([]*MediaRecord, error) {
	namespace = strings.TrimSpace(namespace)
	ownerID = strings.TrimSpace(ownerID)
	if err := ValidateNamespace(namespace); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list rejected")
	}
	if ownerID == "" {
		return nil, s.newError(ctx, platformerrors.ErrorTypeInvalidInput, "owner id is required", nil, "8716ab3e-820d-4bfd-99d5-67b976660e33")
	}

	records, err := s.repo.ListActiveByOwner(ctx, namespace, ownerID)
	if err != nil {
		return nil, s.readError(ctx, err, "failed to list media", "9d3f6a2b-8c1e-4b7d-a5f0-3e2c7b9d1a64")
	}
	if records == nil {
		records = []*MediaRecord{}
	}
	return records, nil
}

// Get returns the metadata of an active record.
func (s *Service) Get(ctx context.Context, namespace, id string) (*MediaRecord, error) {
	return s.lookupActive(ctx, namespace, id)
}

// Download fetches the payload of an active record for proxying.
func (s *Service) Download(ctx context.Context, namespace, id string) (io.ReadCloser, *MediaRecord, error) {
	record, err := s.lookupActive(ctx, namespace, id)
	if err != nil {
		return nil, nil, err
	}
	reader, mime, err := s.storage.Download(ctx, record.ObjectKey)
	if err != nil {
		return nil, nil, s.newErrorWithContext(ctx, platformerrors.ErrorTypeStorageConnection, "failed to read media payload", err,
			"d3de5f0a-979e-425b-8031-7aa085e382ef", map[string]any{"object_key": record.ObjectKey})
	}
	if mime != "" {
		record.ContentType = mime
	}
	return reader, record, nil
}

// Ready reports whether both stores are reachable.
func (s *Service) Ready(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "metadata store unavailable")
	}
	if err := s.storage.Health(ctx); err != nil {
		return s.newError(ctx, platformerrors.ErrorTypeStorageConnection, "object store unavailable", err, "8a188b01-0022-4ffe-9b72-26b605d9653b")
	}
	return nil
}

func (s *Service) lookupActive(ctx context.Context, namespace, id string) (*MediaRecord, error) {
	namespace = strings.TrimSpace(namespace)
	id = strings.TrimSpace(id)
	if namespace == "" {
		return nil, s.newError(ctx, platformerrors.ErrorTypeInvalidInput, "namespace is required", nil, "18a7c082-de63-4335-85a8-57b9bacb2121")
	}
	if id == "" {
		return nil, s.newError(ctx, platformerrors.ErrorTypeInvalidInput, "media id is required", nil, "ea0f70bb-5430-47d6-ab22-bbd3317f0b0f")
	}

	record, err := s.repo.FindActiveByID(ctx, namespace, id)
	if err != nil {
		return nil, s.readError(ctx, err, "failed to look up media", "2b8e5c1d-4f7a-4d9e-8b3c-6a0f2e5d9c17")
	}
	if record == nil {
		return nil, s.notFoundError(ctx, namespace, id)
	}
	return record, nil
}

func (s *Service) readFile(ctx context.Context, file *FileUpload) ([]byte, string, error) {
	if file == nil || file.Body == nil {
		return nil, "", s.newError(ctx, platformerrors.ErrorTypeInvalidFile, "file is required", nil, "45ee671b-b4ad-4c11-83d1-2b0e179d7347")
	}
	name := SanitizeFileName(file.Name)
	if name == "" {
		return nil, "", s.newError(ctx, platformerrors.ErrorTypeInvalidFile, "file name is required", nil, "d9e5a1fa-acc8-424c-ac6f-d935fe89c9f9")
	}
	if file.Size > s.cfg.MaxMediaBytes {
		return nil, "", s.tooLargeError(ctx)
	}

	data, err := io.ReadAll(io.LimitReader(file.Body, s.cfg.MaxMediaBytes+1))
	if err != nil {
		return nil, "", s.newError(ctx, platformerrors.ErrorTypeInvalidFile, "failed to read uploaded file", err, "4610f390-8995-465a-816e-0bc23cf024d3")
	}
	if len(data) == 0 {
		return nil, "", s.newError(ctx, platformerrors.ErrorTypeInvalidFile, "file is empty", nil, "d11dbfa9-508f-49a0-b6b2-9698dcd51cb7")
	}
	if int64(len(data)) > s.cfg.MaxMediaBytes {
		return nil, "", s.tooLargeError(ctx)
	}
	return data, name, nil
}

// prepare classifies the file first so extension-less names surface as unsupported media.
func (s *Service) prepare(ctx context.Context, namespace, name string, data []byte) (*preparedFile, string, error) {
	kind, err := Classify(name)
	if err != nil {
		return nil, "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "classify media")
	}
	key, err := BuildKey(namespace, name)
	if err != nil {
		return nil, "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "build object key")
	}
	declared, err := ContentTypeFor(name)
	if err != nil {
		return nil, "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "classify media")
	}
	return &preparedFile{
		name:        name,
		kind:        kind,
		contentType: refineContentType(kind, declared, data),
		data:        data,
	}, key, nil
}

func (s *Service) logOrphan(key, reason string, err error) {
	metrics.RecordOrphanedObject(reason)
	s.log.Error().
		Err(err).
		Str("event", "orphaned_object").
		Str("reason", reason).
		Str("object_key", key).
		Msg("object left in storage without a matching active record")
}

func (s *Service) externalizeURL(raw string) string {
	publicEndpoint := strings.TrimSpace(s.cfg.S3PublicEndpoint)
	if publicEndpoint == "" || strings.TrimSpace(raw) == "" {
		return raw
	}

	target, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	external, err := url.Parse(publicEndpoint)
	if err != nil || external.Scheme == "" || external.Host == "" {
		return raw
	}

	target.Scheme = external.Scheme
	target.Host = external.Host

	if path := strings.TrimSpace(external.Path); path != "" && path != "/" {
		target.Path = joinPublicPath(path, target.Path)
	}

	return target.String()
}

func joinPublicPath(basePath, objectPath string) string {
	base := strings.TrimSuffix(basePath, "/")
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}

	relative := strings.TrimPrefix(objectPath, "/")
	if relative == "" {
		return base
	}
	return base + "/" + relative
}

func (s *Service) duplicateError(ctx context.Context, namespace, key string) error {
	return s.newErrorWithContext(ctx, platformerrors.ErrorTypeDuplicateResource,
		fmt.Sprintf("an active media item already uses %q in namespace %q", key, namespace), nil,
		"8420ffea-8837-4186-901a-67ced6619bde", map[string]any{"object_key": key})
}

func (s *Service) notFoundError(ctx context.Context, namespace, id string) error {
	return s.newErrorWithContext(ctx, platformerrors.ErrorTypeNotFound,
		fmt.Sprintf("media %s not found in namespace %s", id, namespace), nil,
		"586c5f58-aa72-43d9-903e-d182ba53a474", map[string]any{"id": id, "namespace": namespace})
}

func (s *Service) tooLargeError(ctx context.Context) error {
	return s.newError(ctx, platformerrors.ErrorTypeInvalidFile,
		fmt.Sprintf("file exceeds max size of %d bytes", s.cfg.MaxMediaBytes), nil, "52bbc7ed-2a0f-42e7-a8eb-2f205a683875")
}

// readError reports a failed metadata read as a read-path connectivity failure.
func (s *Service) readError(ctx context.Context, err error, message, uuid string) error {
	return s.newError(ctx, platformerrors.ErrorTypeStorageConnection, message, err, uuid)
}

func (s *Service) newError(ctx context.Context, errorType platformerrors.ErrorType, message string, err error, uuid string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, errorType, message, err, uuid)
}

func (s *Service) newErrorWithContext(ctx context.Context, errorType platformerrors.ErrorType, message string, err error, uuid string, fields map[string]any) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, errorType, message, err, uuid, fields)
}
