package models

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&PaymentType{},
		&RecurringPayment{},
		&SchedulerSettings{},
		&AutomationTask{},
		&TreasuryBalance{},
		&TokenBalance{},
		&TokenAllowance{},
		&LedgerBalance{},
		&Stream{},
		&SchedulerEvent{},
		&SmartContract{},
	}
}
