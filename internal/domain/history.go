package domain

import "time"

// CashAsset is the synthetic asset name used for the cash row in asset
// snapshots.
const CashAsset = "CASH"

// TransactionRow is one executed trade as recorded by the account ledger.
type TransactionRow struct {
	Date     time.Time
	Permno   int32
	Quantity float64
	Price    float64
}

// CapitalRow is the account's total equity on one trading day.
type CapitalRow struct {
	Date    time.Time
	Capital float64
}

// AssetSnapshotRow is the mark-to-market value of one holding (or CASH) on
// one trading day.
type AssetSnapshotRow struct {
	Date     time.Time
	Asset    string
	Quantity float64
	Value    float64
}
