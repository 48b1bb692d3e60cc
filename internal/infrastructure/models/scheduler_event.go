package models

import (
	"time"

	"github.com/google/uuid"
)

type SchedulerEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type      string    `gorm:"type:varchar(50);not null;index"`
	Owner     string    `gorm:"type:varchar(42);index"`
	Payload   string    `gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time `gorm:"index"`
}
