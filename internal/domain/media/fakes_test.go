package media_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"media-store/internal/domain/media"
	"media-store/internal/utils/platformerrors"
)

var errInjected = errors.New("injected failure")

// memoryRepository mirrors the conditional semantics of the gorm repository.
type memoryRepository struct {
	mu      sync.Mutex
	records []*media.MediaRecord

	FindErr       error
	CreateErr     error
	SaveErr       error
	DeactivateErr error
	PingErr       error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{}
}

func (r *memoryRepository) FindActiveByKey(ctx context.Context, namespace, objectKey string) (*media.MediaRecord, error) {
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Active && rec.Namespace == namespace && rec.ObjectKey == objectKey {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) FindActiveByID(ctx context.Context, namespace, id string) (*media.MediaRecord, error) {
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Active && rec.Namespace == namespace && rec.ID == id {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) ExistsActiveByKey(ctx context.Context, namespace, objectKey string) (bool, error) {
	rec, err := r.FindActiveByKey(ctx, namespace, objectKey)
	return rec != nil, err
}

func (r *memoryRepository) Create(ctx context.Context, record *media.MediaRecord) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Active && rec.Namespace == record.Namespace && rec.ObjectKey == record.ObjectKey {
			return duplicateErr()
		}
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	clone := *record
	r.records = append(r.records, &clone)
	return nil
}

func (r *memoryRepository) Save(ctx context.Context, record *media.MediaRecord) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Active && rec.ID != record.ID && rec.Namespace == record.Namespace && rec.ObjectKey == record.ObjectKey {
			return duplicateErr()
		}
	}
	for i, rec := range r.records {
		if rec.ID == record.ID && rec.Namespace == record.Namespace && rec.Active {
			record.UpdatedAt = time.Now().UTC()
			clone := *record
			r.records[i] = &clone
			return nil
		}
	}
	return notFoundErr()
}

func (r *memoryRepository) Deactivate(ctx context.Context, namespace, id string, at time.Time) error {
	if r.DeactivateErr != nil {
		return r.DeactivateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id && rec.Namespace == namespace && rec.Active {
			rec.Active = false
			disabledAt := at
			rec.DisabledAt = &disabledAt
			return nil
		}
	}
	return notFoundErr()
}

func (r *memoryRepository) ListActiveByOwner(ctx context.Context, namespace, ownerID string) ([]*media.MediaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*media.MediaRecord
	for _, rec := range r.records {
		if rec.Active && rec.Namespace == namespace && rec.OwnerID == ownerID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memoryRepository) Ping(ctx context.Context) error {
	return r.PingErr
}

func (r *memoryRepository) byID(id string) *media.MediaRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			clone := *rec
			return &clone
		}
	}
	return nil
}

func duplicateErr() error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerRepository, platformerrors.ErrorTypeDuplicateResource, "duplicate", nil, "")
}

func notFoundErr() error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "not found", nil, "")
}

type storedObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// memoryStorage is a bucket held in a map. Failures are injected per operation.
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string]storedObject
	calls   map[string]int

	UploadErr  error
	CopyErr    error
	DeleteErr  error
	PresignErr error
	ListErr    error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		objects: map[string]storedObject{},
		calls:   map[string]int{},
	}
}

func (s *memoryStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	s.record("upload")
	if s.UploadErr != nil {
		return s.UploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.put(key, data, contentType, time.Now().UTC())
	return nil
}

func (s *memoryStorage) Copy(ctx context.Context, srcKey, dstKey string) error {
	s.record("copy")
	if s.CopyErr != nil {
		return s.CopyErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[srcKey]
	if !ok {
		return errors.New("NoSuchKey: " + srcKey)
	}
	s.objects[dstKey] = obj
	return nil
}

func (s *memoryStorage) Delete(ctx context.Context, key string) error {
	s.record("delete")
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memoryStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.record("presign")
	if s.PresignErr != nil {
		return "", s.PresignErr
	}
	return "http://localhost:9000/media/" + key + "?X-Amz-Expires=" + ttl.String(), nil
}

func (s *memoryStorage) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", errors.New("NoSuchKey: " + key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}

func (s *memoryStorage) List(ctx context.Context, prefix string) ([]media.ObjectInfo, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []media.ObjectInfo
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, media.ObjectInfo{Key: key, Size: int64(len(obj.data)), LastModified: obj.lastModified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *memoryStorage) Health(ctx context.Context) error {
	return nil
}

func (s *memoryStorage) put(key string, data []byte, contentType string, modified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = storedObject{data: data, contentType: contentType, lastModified: modified}
}

func (s *memoryStorage) get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj.data, ok
}

// archivesOf lists the update and reconciler copies kept for a live key.
func (s *memoryStorage) archivesOf(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := media.DisabledKey(key) + "."
	var out []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (s *memoryStorage) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *memoryStorage) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}
