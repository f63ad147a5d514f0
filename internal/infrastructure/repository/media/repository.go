package media

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "media-store/internal/domain/media"
	"media-store/internal/infrastructure/database"
	"media-store/internal/infrastructure/database/entities"
	"media-store/internal/utils/platformerrors"
)

// Repository handles media record persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindActiveByKey(ctx context.Context, namespace, objectKey string) (*domain.MediaRecord, error) {
	var entity entities.MediaRecord
	err := r.db.WithContext(ctx).
		Where("namespace = ? AND object_key = ? AND active = ?", namespace, objectKey, true).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find media by key",
			err,
			"33d8dd8d-d66b-4227-b46b-e4f53cd3545b",
		)
	}
	record := mapEntity(entity)
	return &record, nil
}

func (r *Repository) FindActiveByID(ctx context.Context, namespace, id string) (*domain.MediaRecord, error) {
	var entity entities.MediaRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND namespace = ? AND active = ?", id, namespace, true).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get media by id",
			err,
			"6ffea48f-277e-48ca-b347-a0e8fc399098",
		)
	}
	record := mapEntity(entity)
	return &record, nil
}

func (r *Repository) ExistsActiveByKey(ctx context.Context, namespace, objectKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.MediaRecord{}).
		Where("namespace = ? AND object_key = ? AND active = ?", namespace, objectKey, true).
		Count(&count).Error
	if err != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to check media key",
			err,
			"e3f891fe-a962-4e3b-8f57-35225f6fa4f3",
		)
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, record *domain.MediaRecord) error {
	entity := toEntity(record)
	err := r.db.WithContext(ctx).Create(&entity).Error
	if err != nil {
		if database.IsUniqueViolation(err) {
			return platformerrors.NewErrorWithContext(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeDuplicateResource,
				"an active media record already uses this key",
				err,
				"ebc19a55-7e47-4dc4-9e7e-4911b86d55f6",
				map[string]any{"namespace": record.Namespace, "object_key": record.ObjectKey},
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create media record",
			err,
			"08169b54-5335-4490-a2ff-62d6b55480db",
		)
	}
	record.CreatedAt = entity.CreatedAt
	record.UpdatedAt = entity.UpdatedAt
	return nil
}

// Save overwrites the mutable fields of a record, provided it is still active.
func (r *Repository) Save(ctx context.Context, record *domain.MediaRecord) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&entities.MediaRecord{}).
		Where("id = ? AND namespace = ? AND active = ?", record.ID, record.Namespace, true).
		Updates(map[string]any{
			"object_key":   record.ObjectKey,
			"file_name":    record.FileName,
			"kind":         string(record.Kind),
			"content_type": record.ContentType,
			"size_bytes":   record.SizeBytes,
			"label":        record.Label,
			"updated_at":   now,
		})
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return platformerrors.NewErrorWithContext(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeDuplicateResource,
				"an active media record already uses this key",
				result.Error,
				"1493d185-12c7-4c00-9adc-418b009ff645",
				map[string]any{"namespace": record.Namespace, "object_key": record.ObjectKey},
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update media record",
			result.Error,
			"d6dbb695-bd78-4d2d-b69a-6f3b68a8b2e0",
		)
	}
	if result.RowsAffected == 0 {
		return notActive(ctx, record.ID, "d0907f1f-6872-443c-9d8c-0c9a4278a73b")
	}
	record.UpdatedAt = now
	return nil
}

// Deactivate flips the active flag; only one caller can win for a given record.
func (r *Repository) Deactivate(ctx context.Context, namespace, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entities.MediaRecord{}).
		Where("id = ? AND namespace = ? AND active = ?", id, namespace, true).
		Updates(map[string]any{
			"active":      false,
			"disabled_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to deactivate media record",
			result.Error,
			"40834d53-d28d-489a-b93e-730bfa97a88e",
		)
	}
	if result.RowsAffected == 0 {
		return notActive(ctx, id, "7177e04d-dc10-4a2e-b64e-337dad422db6")
	}
	return nil
}

func (r *Repository) ListActiveByOwner(ctx context.Context, namespace, ownerID string) ([]*domain.MediaRecord, error) {
	var rows []entities.MediaRecord
	err := r.db.WithContext(ctx).
		Where("namespace = ? AND owner_id = ? AND active = ?", namespace, ownerID, true).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list media by owner",
			err,
			"cbcf68e0-abd7-43ed-bf08-2acc98302bf0",
		)
	}
	records := make([]*domain.MediaRecord, 0, len(rows))
	for _, row := range rows {
		record := mapEntity(row)
		records = append(records, &record)
	}
	return records, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := database.Ping(ctx, r.db); err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"database is unreachable",
			err,
			"673bd351-1cd9-4ef3-8b3b-41c9c81c34a9",
		)
	}
	return nil
}

func notActive(ctx context.Context, id, uuid string) error {
	return platformerrors.NewErrorWithContext(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound,
		"media record is not active",
		nil,
		uuid,
		map[string]any{"id": id},
	)
}

func toEntity(record *domain.MediaRecord) entities.MediaRecord {
	return entities.MediaRecord{
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
	}
}

func mapEntity(entity entities.MediaRecord) domain.MediaRecord {
	return domain.MediaRecord{
		ID:          entity.ID,
		Namespace:   entity.Namespace,
		ObjectKey:   entity.ObjectKey,
		FileName:    entity.FileName,
		Kind:        domain.Kind(entity.Kind),
		ContentType: entity.ContentType,
		SizeBytes:   entity.SizeBytes,
		OwnerID:     entity.OwnerID,
		Label:       entity.Label,
		Active:      entity.Active,
		DisabledAt:  entity.DisabledAt,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}
