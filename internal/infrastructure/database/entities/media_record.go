package entities

import "time"

// MediaRecord represents the persisted media metadata.
// At most one active row may exist per (namespace, object_key); the
// partial unique index lives in the SQL migrations.
type MediaRecord struct {
	ID          string `gorm:"type:varchar(40);primaryKey"`
	Namespace   string `gorm:"type:varchar(128);not null"`
	ObjectKey   string `gorm:"type:varchar(512);not null"`
	FileName    string `gorm:"type:varchar(255);not null"`
	Kind        string `gorm:"type:varchar(16);not null"`
	ContentType string `gorm:"type:varchar(128);not null"`
	SizeBytes   int64  `gorm:"not null"`
	OwnerID     string `gorm:"type:varchar(128);not null"`
	Label       string `gorm:"type:varchar(255);not null"`
	Active      bool   `gorm:"not null;default:true"`
	DisabledAt  *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (MediaRecord) TableName() string {
	return "media_records"
}
