package models

import "time"

type SchedulerSettings struct {
	ID                 uint   `gorm:"primaryKey"`
	ExecutionInterval  uint64 `gorm:"not null"`
	ExpirationInterval uint64 `gorm:"not null"`
	MaxGasPrice        string `gorm:"type:varchar(78);not null"`
	Governor           string `gorm:"type:varchar(42);not null"`
	PendingGovernor    string `gorm:"type:varchar(42)"`
	UpdatedAt          time.Time
}

func (SchedulerSettings) TableName() string {
	return "scheduler_settings"
}
