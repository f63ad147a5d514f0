package media_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-store/internal/config"
	"media-store/internal/domain/media"
	"media-store/internal/utils/platformerrors"
)

type serviceFixture struct {
	svc     *media.Service
	repo    *memoryRepository
	storage *memoryStorage
	cfg     *config.Config
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	cfg := &config.Config{
		S3Bucket:      "media",
		S3PresignTTL:  time.Hour,
		MaxMediaBytes: 1024,
	}
	repo := newMemoryRepository()
	storage := newMemoryStorage()
	return &serviceFixture{
		svc:     media.NewService(cfg, repo, storage, zerolog.Nop()),
		repo:    repo,
		storage: storage,
		cfg:     cfg,
	}
}

func fileOf(name, content string) *media.FileUpload {
	return &media.FileUpload{Name: name, Size: int64(len(content)), Body: strings.NewReader(content)}
}

func uploadRequest(namespace, name, content string) media.UploadRequest {
	return media.UploadRequest{
		Namespace: namespace,
		Label:     "cover",
		OwnerID:   "user-42",
		File:      fileOf(name, content),
	}
}

func requireErrorType(t *testing.T, err error, want platformerrors.ErrorType) {
	t.Helper()
	require.Error(t, err)
	pe := platformerrors.GetPlatformError(err)
	require.NotNil(t, pe, "expected a platform error, got %v", err)
	assert.Equal(t, want, pe.Type, err.Error())
}

func TestUpload_StoresObjectAndActiveRecord(t *testing.T) {
	f := newServiceFixture(t)

	rec, err := f.svc.Upload(context.Background(), uploadRequest("eduApi", "photo.png", "png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.ID, "med_"))
	assert.Equal(t, "eduApi", rec.Namespace)
	assert.Equal(t, "eduApi/photo.png", rec.ObjectKey)
	assert.Equal(t, media.KindImage, rec.Kind)
	assert.Equal(t, "photo.png", rec.FileName)
	assert.Equal(t, int64(9), rec.SizeBytes)
	assert.True(t, rec.Active)
	assert.Nil(t, rec.DisabledAt)

	data, ok := f.storage.get("eduApi/photo.png")
	require.True(t, ok)
	assert.Equal(t, "png-bytes", string(data))

	stored := f.repo.byID(rec.ID)
	require.NotNil(t, stored)
	assert.True(t, stored.Active)
}

func TestUpload_DuplicateKeyDoesNotWrite(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "first"))
	require.NoError(t, err)

	_, err = f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "second"))
	requireErrorType(t, err, platformerrors.ErrorTypeDuplicateResource)

	assert.Equal(t, 1, f.storage.count("upload"))
	data, _ := f.storage.get("eduApi/photo.png")
	assert.Equal(t, "first", string(data))
}

func TestUpload_NamespacesAreIsolated(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	a, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "a"))
	require.NoError(t, err)
	b, err := f.svc.Upload(ctx, uploadRequest("shopApi", "photo.png", "b"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ObjectKey, b.ObjectKey)

	_, err = f.svc.PresignURL(ctx, "shopApi", a.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeNotFound)
}

func TestUpload_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  media.UploadRequest
		want platformerrors.ErrorType
	}{
		{
			name: "missing file",
			req:  media.UploadRequest{Namespace: "eduApi", Label: "x", OwnerID: "u"},
			want: platformerrors.ErrorTypeInvalidFile,
		},
		{
			name: "blank file name",
			req:  media.UploadRequest{Namespace: "eduApi", Label: "x", OwnerID: "u", File: fileOf("  ", "data")},
			want: platformerrors.ErrorTypeInvalidFile,
		},
		{
			name: "empty content",
			req:  media.UploadRequest{Namespace: "eduApi", Label: "x", OwnerID: "u", File: fileOf("photo.png", "")},
			want: platformerrors.ErrorTypeInvalidFile,
		},
		{
			name: "too large",
			req:  media.UploadRequest{Namespace: "eduApi", Label: "x", OwnerID: "u", File: fileOf("photo.png", strings.Repeat("a", 2048))},
			want: platformerrors.ErrorTypeInvalidFile,
		},
		{
			name: "blank namespace",
			req:  media.UploadRequest{Namespace: " ", Label: "x", OwnerID: "u", File: fileOf("photo.png", "data")},
			want: platformerrors.ErrorTypeInvalidInput,
		},
		{
			name: "reserved namespace",
			req:  media.UploadRequest{Namespace: "disabled", Label: "x", OwnerID: "u", File: fileOf("photo.png", "data")},
			want: platformerrors.ErrorTypeInvalidInput,
		},
		{
			name: "blank label",
			req:  media.UploadRequest{Namespace: "eduApi", Label: "", OwnerID: "u", File: fileOf("photo.png", "data")},
			want: platformerrors.ErrorTypeInvalidInput,
		},
		{
			name: "blank owner",
			req:  media.UploadRequest{Namespace: "eduApi", Label: "x", OwnerID: " ", File: fileOf("photo.png", "data")},
			want: platformerrors.ErrorTypeInvalidInput,
		},
		{
			name: "namespace too long",
			req:  media.UploadRequest{Namespace: strings.Repeat("n", media.MaxNamespaceLength+1), Label: "x", OwnerID: "u", File: fileOf("photo.png", "data")},
			want: platformerrors.ErrorTypeInvalidInput,
		},
		{
			name: "label too long",
			req:  media.UploadRequest{Namespace: "eduApi", Label: strings.Repeat("l", media.MaxLabelLength+1), OwnerID: "u", File: fileOf("photo.png", "data")},
			want: platformerrors.ErrorTypeInvalidInput,
		},
		{
			name: "owner too long",
			req:  media.UploadRequest{Namespace: "eduApi", Label: "x", OwnerID: strings.Repeat("o", media.MaxOwnerIDLength+1), File: fileOf("photo.png", "data")},
			want: platformerrors.ErrorTypeInvalidInput,
		},
		{
			name: "file name too long",
			req:  media.UploadRequest{Namespace: "eduApi", Label: "x", OwnerID: "u", File: fileOf(strings.Repeat("f", media.MaxFileNameLength)+".png", "data")},
			want: platformerrors.ErrorTypeInvalidInput,
		},
		{
			name: "no extension",
			req:  media.UploadRequest{Namespace: "eduApi", Label: "x", OwnerID: "u", File: fileOf("testfile", "data")},
			want: platformerrors.ErrorTypeUnsupportedMediaKind,
		},
		{
			name: "unsupported extension",
			req:  media.UploadRequest{Namespace: "eduApi", Label: "x", OwnerID: "u", File: fileOf("notes.txt", "data")},
			want: platformerrors.ErrorTypeUnsupportedMediaKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			_, err := f.svc.Upload(context.Background(), tt.req)
			requireErrorType(t, err, tt.want)
			assert.Zero(t, f.storage.count("upload"))
		})
	}
}

func TestUpload_StorageFailureLeavesNoRecord(t *testing.T) {
	f := newServiceFixture(t)
	f.storage.UploadErr = errInjected

	_, err := f.svc.Upload(context.Background(), uploadRequest("eduApi", "photo.png", "data"))
	requireErrorType(t, err, platformerrors.ErrorTypeStorageWrite)

	exists, err := f.repo.ExistsActiveByKey(context.Background(), "eduApi", "eduApi/photo.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpload_MetadataFailureReportsStorageWrite(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.CreateErr = errInjected

	_, err := f.svc.Upload(context.Background(), uploadRequest("eduApi", "photo.png", "data"))
	requireErrorType(t, err, platformerrors.ErrorTypeStorageWrite)

	// object stays behind for the reconciler
	_, ok := f.storage.get("eduApi/photo.png")
	assert.True(t, ok)
}

func TestUpload_LostInsertRaceIsDuplicate(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.CreateErr = duplicateErr()

	_, err := f.svc.Upload(context.Background(), uploadRequest("eduApi", "photo.png", "data"))
	requireErrorType(t, err, platformerrors.ErrorTypeDuplicateResource)
}

func TestPresignURL(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "data"))
	require.NoError(t, err)

	got, err := f.svc.PresignURL(ctx, "eduApi", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, 3600, got.ExpiresIn)
	assert.Contains(t, got.URL, "eduApi/photo.png")
	assert.True(t, strings.HasPrefix(got.URL, "http://localhost:9000/media/"))
}

func TestPresignURL_PublicEndpointRewrite(t *testing.T) {
	f := newServiceFixture(t)
	f.cfg.S3PublicEndpoint = "https://cdn.example.com/assets"
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "data"))
	require.NoError(t, err)

	got, err := f.svc.PresignURL(ctx, "eduApi", rec.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.URL, "https://cdn.example.com/assets/media/eduApi/photo.png"), got.URL)
}

func TestPresignURL_Errors(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.PresignURL(ctx, "", "med_x")
	requireErrorType(t, err, platformerrors.ErrorTypeInvalidInput)

	_, err = f.svc.PresignURL(ctx, "eduApi", " ")
	requireErrorType(t, err, platformerrors.ErrorTypeInvalidInput)

	_, err = f.svc.PresignURL(ctx, "eduApi", "med_missing")
	requireErrorType(t, err, platformerrors.ErrorTypeNotFound)

	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "data"))
	require.NoError(t, err)
	f.storage.PresignErr = errInjected
	_, err = f.svc.PresignURL(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeStorageConnection)
}

func TestReadPath_MetadataFailureIsStorageConnection(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "data"))
	require.NoError(t, err)
	f.repo.FindErr = errInjected

	_, err = f.svc.PresignURL(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeStorageConnection)
	assert.Equal(t, 502, platformerrors.ErrorTypeToHTTPStatus(platformerrors.GetPlatformError(err).Type))

	_, _, err = f.svc.Download(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeStorageConnection)

	_, err = f.svc.Get(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeStorageConnection)

	_, err = f.svc.Upload(ctx, uploadRequest("eduApi", "other.png", "data"))
	requireErrorType(t, err, platformerrors.ErrorTypeStorageConnection)
	assert.Equal(t, 1, f.storage.count("upload"))
}

func TestGet(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "data"))
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, "eduApi", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ObjectKey, got.ObjectKey)

	_, err = f.svc.Disable(ctx, "eduApi", rec.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeNotFound)
}

func TestDisable_MovesPayloadAndIsTerminal(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "data"))
	require.NoError(t, err)

	disabled, err := f.svc.Disable(ctx, "eduApi", rec.ID)
	require.NoError(t, err)
	assert.False(t, disabled.Active)
	require.NotNil(t, disabled.DisabledAt)

	_, live := f.storage.get("eduApi/photo.png")
	assert.False(t, live)
	archived, ok := f.storage.get("disabled/eduApi/photo.png")
	require.True(t, ok)
	assert.Equal(t, "data", string(archived))

	stored := f.repo.byID(rec.ID)
	require.NotNil(t, stored)
	assert.False(t, stored.Active)

	_, err = f.svc.PresignURL(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeNotFound)
	_, err = f.svc.Disable(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeNotFound)
	_, err = f.svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: rec.ID, Label: "x", File: fileOf("photo.png", "new")})
	requireErrorType(t, err, platformerrors.ErrorTypeNotFound)

	// the key is free again once the previous record is disabled
	again, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "fresh"))
	require.NoError(t, err)
	assert.NotEqual(t, rec.ID, again.ID)
}

func TestDisable_CopyFailureKeepsRecordActive(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "data"))
	require.NoError(t, err)

	f.storage.CopyErr = errInjected
	_, err = f.svc.Disable(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeStorageMove)

	assert.Zero(t, f.storage.count("delete"))
	_, live := f.storage.get("eduApi/photo.png")
	assert.True(t, live)
	assert.True(t, f.repo.byID(rec.ID).Active)
}

func TestDisable_DeleteFailureKeepsRecordActive(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "data"))
	require.NoError(t, err)

	f.storage.DeleteErr = errInjected
	_, err = f.svc.Disable(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeStorageMove)

	assert.True(t, f.repo.byID(rec.ID).Active)
	_, archived := f.storage.get("disabled/eduApi/photo.png")
	assert.True(t, archived)
}

func TestDisable_FlagFailureIsStorageWrite(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "data"))
	require.NoError(t, err)

	f.repo.DeactivateErr = errInjected
	_, err = f.svc.Disable(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeStorageWrite)
}

// staleRepository serves one outdated lookup, as a reader racing another disable would see.
type staleRepository struct {
	*memoryRepository
	stale *media.MediaRecord
}

func (r *staleRepository) FindActiveByID(ctx context.Context, namespace, id string) (*media.MediaRecord, error) {
	if r.stale != nil {
		rec := r.stale
		r.stale = nil
		return rec, nil
	}
	return r.memoryRepository.FindActiveByID(ctx, namespace, id)
}

func TestDisable_PayloadAlreadyMovedByConcurrentDisable(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "data"))
	require.NoError(t, err)

	// the racing disable completes after our lookup
	require.NoError(t, f.storage.Copy(ctx, rec.ObjectKey, media.DisabledKey(rec.ObjectKey)))
	require.NoError(t, f.storage.Delete(ctx, rec.ObjectKey))
	require.NoError(t, f.repo.Deactivate(ctx, rec.Namespace, rec.ID, time.Now()))

	repo := &staleRepository{memoryRepository: f.repo, stale: rec}
	svc := media.NewService(f.cfg, repo, f.storage, zerolog.Nop())

	_, err = svc.Disable(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeNotFound)
	_, archived := f.storage.get("disabled/eduApi/photo.png")
	assert.True(t, archived)
}

func TestUpdate_SameNameArchivesPreviousPayload(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "v1"))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: rec.ID, Label: "new label", File: fileOf("photo.png", "v2")})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, "new label", updated.Label)
	assert.Equal(t, "eduApi/photo.png", updated.ObjectKey)
	assert.True(t, updated.Active)

	live, _ := f.storage.get("eduApi/photo.png")
	assert.Equal(t, "v2", string(live))
	archives := f.storage.archivesOf("eduApi/photo.png")
	require.Len(t, archives, 1)
	assert.True(t, strings.HasPrefix(archives[0], "disabled/eduApi/photo.png."+rec.ID+"-"), archives[0])
	archived, _ := f.storage.get(archives[0])
	assert.Equal(t, "v1", string(archived))
	_, atDisabledKey := f.storage.get(media.DisabledKey("eduApi/photo.png"))
	assert.False(t, atDisabledKey)
	assert.Zero(t, f.storage.count("delete"))
}

func TestUpdate_NewNameMovesRecordToNewKey(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "v1"))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: rec.ID, Label: "clip", File: fileOf("clip.mp4", "v2")})
	require.NoError(t, err)
	assert.Equal(t, "eduApi/clip.mp4", updated.ObjectKey)
	assert.Equal(t, media.KindVideo, updated.Kind)

	_, oldLive := f.storage.get("eduApi/photo.png")
	assert.False(t, oldLive)
	_, newLive := f.storage.get("eduApi/clip.mp4")
	assert.True(t, newLive)
	assert.Len(t, f.storage.archivesOf("eduApi/photo.png"), 1)

	stored := f.repo.byID(rec.ID)
	assert.Equal(t, "eduApi/clip.mp4", stored.ObjectKey)
}

func TestUpdate_KeepsEarlierDisabledPayload(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "first-bytes"))
	require.NoError(t, err)
	_, err = f.svc.Disable(ctx, "eduApi", first.ID)
	require.NoError(t, err)

	second, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "second-bytes"))
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: second.ID, Label: "x", File: fileOf("other.png", "third-bytes")})
	require.NoError(t, err)

	disabled, ok := f.storage.get(media.DisabledKey(first.ObjectKey))
	require.True(t, ok)
	assert.Equal(t, "first-bytes", string(disabled))

	archives := f.storage.archivesOf("eduApi/photo.png")
	require.Len(t, archives, 1)
	archived, _ := f.storage.get(archives[0])
	assert.Equal(t, "second-bytes", string(archived))
}

func TestUpdate_LabelTooLong(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "v1"))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: rec.ID, Label: strings.Repeat("l", media.MaxLabelLength+1), File: fileOf("photo.png", "v2")})
	requireErrorType(t, err, platformerrors.ErrorTypeInvalidInput)
	assert.Zero(t, f.storage.count("copy"))
	assert.Equal(t, 1, f.storage.count("upload"))
}

func TestUpdate_TargetKeyTaken(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	first, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "a"))
	require.NoError(t, err)
	_, err = f.svc.Upload(ctx, uploadRequest("eduApi", "other.png", "b"))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: first.ID, Label: "x", File: fileOf("other.png", "c")})
	requireErrorType(t, err, platformerrors.ErrorTypeDuplicateResource)
	assert.Zero(t, f.storage.count("copy"))
	assert.Equal(t, 2, f.storage.count("upload"))
}

func TestUpdate_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: "med_missing", Label: "x", File: fileOf("photo.png", "d")})
		requireErrorType(t, err, platformerrors.ErrorTypeNotFound)
	})

	t.Run("invalid file", func(t *testing.T) {
		f := newServiceFixture(t)
		rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "v1"))
		require.NoError(t, err)
		_, err = f.svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: rec.ID, Label: "x", File: fileOf("photo.png", "")})
		requireErrorType(t, err, platformerrors.ErrorTypeInvalidFile)
	})

	t.Run("archive copy fails", func(t *testing.T) {
		f := newServiceFixture(t)
		rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "v1"))
		require.NoError(t, err)
		f.storage.CopyErr = errInjected

		_, err = f.svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: rec.ID, Label: "x", File: fileOf("photo.png", "v2")})
		requireErrorType(t, err, platformerrors.ErrorTypeStorageWrite)
		live, _ := f.storage.get("eduApi/photo.png")
		assert.Equal(t, "v1", string(live))
		assert.Equal(t, 1, f.storage.count("upload"))
	})

	t.Run("write fails", func(t *testing.T) {
		f := newServiceFixture(t)
		rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "v1"))
		require.NoError(t, err)
		f.storage.UploadErr = errInjected

		_, err = f.svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: rec.ID, Label: "x", File: fileOf("clip.mp4", "v2")})
		requireErrorType(t, err, platformerrors.ErrorTypeStorageWrite)
		stored := f.repo.byID(rec.ID)
		assert.Equal(t, "eduApi/photo.png", stored.ObjectKey)
		_, live := f.storage.get("eduApi/photo.png")
		assert.True(t, live)
	})

	t.Run("metadata save fails", func(t *testing.T) {
		f := newServiceFixture(t)
		rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "v1"))
		require.NoError(t, err)
		f.repo.SaveErr = errInjected

		_, err = f.svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: rec.ID, Label: "x", File: fileOf("clip.mp4", "v2")})
		requireErrorType(t, err, platformerrors.ErrorTypeStorageWrite)
		_, oldLive := f.storage.get("eduApi/photo.png")
		assert.True(t, oldLive)
		assert.Equal(t, "eduApi/photo.png", f.repo.byID(rec.ID).ObjectKey)
	})

	t.Run("metadata save fails on the same key", func(t *testing.T) {
		var logs bytes.Buffer
		f := newServiceFixture(t)
		svc := media.NewService(f.cfg, f.repo, f.storage, zerolog.New(&logs))
		rec, err := svc.Upload(ctx, uploadRequest("eduApi", "photo.png", "v1"))
		require.NoError(t, err)
		f.repo.SaveErr = errInjected

		_, err = svc.Update(ctx, media.UpdateRequest{Namespace: "eduApi", ID: rec.ID, Label: "x", File: fileOf("photo.png", "v2-longer")})
		requireErrorType(t, err, platformerrors.ErrorTypeStorageWrite)

		live, _ := f.storage.get("eduApi/photo.png")
		assert.Equal(t, "v2-longer", string(live))
		assert.Equal(t, int64(2), f.repo.byID(rec.ID).SizeBytes)
		assert.Contains(t, logs.String(), `"event":"payload_overwritten_record_stale"`)
		assert.Contains(t, logs.String(), `"archive_key":"disabled/eduApi/photo.png.`+rec.ID)
		assert.NotContains(t, logs.String(), `"event":"orphaned_object"`)
	})
}

func TestListByOwner(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	empty, err := f.svc.ListByOwner(ctx, "eduApi", "user-42")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	a, err := f.svc.Upload(ctx, uploadRequest("eduApi", "a.png", "a"))
	require.NoError(t, err)
	b, err := f.svc.Upload(ctx, uploadRequest("eduApi", "b.mp3", "b"))
	require.NoError(t, err)
	_, err = f.svc.Disable(ctx, "eduApi", b.ID)
	require.NoError(t, err)

	records, err := f.svc.ListByOwner(ctx, "eduApi", "user-42")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, a.ID, records[0].ID)

	_, err = f.svc.ListByOwner(ctx, "eduApi", "")
	requireErrorType(t, err, platformerrors.ErrorTypeInvalidInput)
}

func TestDownload(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec, err := f.svc.Upload(ctx, uploadRequest("eduApi", "song.mp3", "audio-bytes"))
	require.NoError(t, err)

	reader, got, err := f.svc.Download(ctx, "eduApi", rec.ID)
	require.NoError(t, err)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(body))
	assert.Equal(t, rec.ID, got.ID)

	_, err = f.svc.Disable(ctx, "eduApi", rec.ID)
	require.NoError(t, err)
	_, _, err = f.svc.Download(ctx, "eduApi", rec.ID)
	requireErrorType(t, err, platformerrors.ErrorTypeNotFound)
}

func TestReady(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, f.svc.Ready(context.Background()))

	f.repo.PingErr = errInjected
	assert.Error(t, f.svc.Ready(context.Background()))
}
