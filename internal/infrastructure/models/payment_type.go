package models

import "time"

type PaymentType struct {
	ID                     string `gorm:"type:varchar(66);primaryKey"`
	Name                   string `gorm:"type:varchar(100);not null;uniqueIndex"`
	MinimumRecurringAmount string `gorm:"type:varchar(78);not null"` // BigInt
	BackendAddress         string `gorm:"type:varchar(42);not null"`
	TokenAddress           string `gorm:"type:varchar(42);not null"`
	RequiresInitialization bool   `gorm:"not null;default:false"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
