package models

type LedgerBalance struct {
	Backend string `gorm:"type:varchar(42);primaryKey"`
	Account string `gorm:"type:varchar(42);primaryKey"`
	Amount  string `gorm:"type:varchar(78);not null"`
}

type Stream struct {
	Backend       string `gorm:"type:varchar(42);primaryKey"`
	Owner         string `gorm:"type:varchar(42);primaryKey"`
	Recipient     string `gorm:"type:varchar(42);not null"`
	Token         string `gorm:"type:varchar(42);not null"`
	RatePerSecond string `gorm:"type:varchar(78);not null"`
	Deposit       string `gorm:"type:varchar(78);not null"`
	Withdrawn     string `gorm:"type:varchar(78);not null"`
	StartTime     uint64 `gorm:"not null"`
}
