package models

import "time"

// RecurringPayment keeps the payment type snapshot denormalised so that later
// registry changes do not rewrite existing schedules.
type RecurringPayment struct {
	Owner                  string `gorm:"type:varchar(42);primaryKey"`
	PaymentTypeID          string `gorm:"type:varchar(66);not null;index"`
	PaymentTypeName        string `gorm:"type:varchar(100);not null"`
	MinimumRecurringAmount string `gorm:"type:varchar(78);not null"`
	BackendAddress         string `gorm:"type:varchar(42);not null"`
	TokenAddress           string `gorm:"type:varchar(42);not null"`
	RequiresInitialization bool   `gorm:"not null;default:false"`
	RecurringAmount        string `gorm:"type:varchar(78);not null"`
	CreatedAtBlock         uint64 `gorm:"column:created_at_block;not null"`
	LastExecutedAt         uint64 `gorm:"not null;default:0"`
	TaskID                 string `gorm:"type:varchar(66);not null"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
