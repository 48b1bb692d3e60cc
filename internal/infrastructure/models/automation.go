package models

import "time"

type AutomationTask struct {
	ID          string `gorm:"type:varchar(66);primaryKey"`
	Owner       string `gorm:"type:varchar(42);not null;index"`
	Target      string `gorm:"type:varchar(42);not null"`
	Selector    string `gorm:"type:varchar(10);not null"`
	Active      bool   `gorm:"not null;default:true"`
	CreatedAt   uint64 `gorm:"not null"`
	CancelledAt *uint64
}

type TreasuryBalance struct {
	ID        uint   `gorm:"primaryKey"`
	Balance   string `gorm:"type:varchar(78);not null"`
	UpdatedAt time.Time
}
