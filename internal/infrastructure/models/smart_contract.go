package models

import (
	"time"

	"gorm.io/gorm"
)

type SmartContract struct {
	Address   string `gorm:"type:varchar(42);primaryKey"`
	Name      string `gorm:"type:varchar(100);not null"`
	Kind      string `gorm:"type:varchar(50);not null;default:'TOKEN'"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
