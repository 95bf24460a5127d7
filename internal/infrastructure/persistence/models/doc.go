// Package models holds the gorm persistence models of the finance kernel.
// Each model maps one table and converts to and from its domain type with
// ToDomain and a ...ModelFromDomain constructor. PostgreSQL tables are created
// by the embedded migrations; AutoMigrate over All() is used for SQLite.
package models

// All returns one instance of every model, in dependency order
func All() []any {
	return []any{
		&AccountModel{},
		&PeriodModel{},
		&JournalEntryModel{},
		&JournalLineModel{},
		&RateModel{},
		&MonetaryBalanceModel{},
		&StockItemModel{},
		&StockLedgerEntryModel{},
		&CostLayerModel{},
		&ReceiptLineModel{},
		&LandedCostAllocationModel{},
		&AssetModel{},
		&ScheduleLineModel{},
		&InvoiceModel{},
		&PaymentModel{},
		&PaymentAllocationModel{},
		&OutboxEntryModel{},
	}
}
