package models

type TokenBalance struct {
	Token   string `gorm:"type:varchar(42);primaryKey"`
	Account string `gorm:"type:varchar(42);primaryKey"`
	Amount  string `gorm:"type:varchar(78);not null"`
}

type TokenAllowance struct {
	Token   string `gorm:"type:varchar(42);primaryKey"`
	Owner   string `gorm:"type:varchar(42);primaryKey"`
	Spender string `gorm:"type:varchar(42);primaryKey"`
	Amount  string `gorm:"type:varchar(78);not null"`
}
