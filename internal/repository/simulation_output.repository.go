package repository

import (
	"fmt"
	"os"

	"pairtrade/internal/domain"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// SimulationOutputRepository persists the ledger's audit trails and the
// per-window returns for the reporting consumers.
type SimulationOutputRepository interface {
	SaveTransactionHistory(path string, rows []domain.TransactionRow) error
	SaveCapitalHistory(path string, rows []domain.CapitalRow) error
	SaveAssetHistory(path string, rows []domain.AssetSnapshotRow) error
	SaveWindowReturns(path string, rows []WindowReturnRow) error
	SaveValueAtRisk(path string, rows []ValueAtRiskRow) error
	LoadAssetHistory(path string) ([]domain.AssetSnapshotRow, error)
}

type WindowReturnRow struct {
	TestEnd Date            `csv:"test_end"`
	Return  decimal.Decimal `csv:"return"`
}

type ValueAtRiskRow struct {
	Date Date            `csv:"timestamp"`
	VaR  decimal.Decimal `csv:"var"`
}

type simulationOutputRepositoryHandler struct{}

func NewSimulationOutputRepository() SimulationOutputRepository {
	return simulationOutputRepositoryHandler{}
}

// money and quantity columns go through decimal so the CSVs don't carry
// float formatting noise
type transactionRow struct {
	Date     Date            `csv:"timestamp"`
	Permno   int32           `csv:"permno"`
	Quantity decimal.Decimal `csv:"quantity"`
	Price    decimal.Decimal `csv:"price"`
}

type capitalRow struct {
	Date    Date            `csv:"timestamp"`
	Capital decimal.Decimal `csv:"capital"`
}

type assetSnapshotRow struct {
	Date     Date            `csv:"timestamp"`
	Asset    string          `csv:"permno"`
	Quantity decimal.Decimal `csv:"quantity"`
	Value    decimal.Decimal `csv:"value"`
}

func (h simulationOutputRepositoryHandler) SaveTransactionHistory(path string, rows []domain.TransactionRow) error {
	out := make([]transactionRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, transactionRow{
			Date:     Date{row.Date},
			Permno:   row.Permno,
			Quantity: decimal.NewFromFloat(row.Quantity),
			Price:    decimal.NewFromFloat(row.Price),
		})
	}
	return writeCsv(path, &out)
}

func (h simulationOutputRepositoryHandler) SaveCapitalHistory(path string, rows []domain.CapitalRow) error {
	out := make([]capitalRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, capitalRow{
			Date:    Date{row.Date},
			Capital: decimal.NewFromFloat(row.Capital),
		})
	}
	return writeCsv(path, &out)
}

func (h simulationOutputRepositoryHandler) SaveAssetHistory(path string, rows []domain.AssetSnapshotRow) error {
	out := make([]assetSnapshotRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, assetSnapshotRow{
			Date:     Date{row.Date},
			Asset:    row.Asset,
			Quantity: decimal.NewFromFloat(row.Quantity),
			Value:    decimal.NewFromFloat(row.Value),
		})
	}
	return writeCsv(path, &out)
}

func (h simulationOutputRepositoryHandler) SaveWindowReturns(path string, rows []WindowReturnRow) error {
	return writeCsv(path, &rows)
}

func (h simulationOutputRepositoryHandler) SaveValueAtRisk(path string, rows []ValueAtRiskRow) error {
	return writeCsv(path, &rows)
}

func (h simulationOutputRepositoryHandler) LoadAssetHistory(path string) ([]domain.AssetSnapshotRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	rows := []assetSnapshotRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	out := make([]domain.AssetSnapshotRow, 0, len(rows))
	for _, row := range rows {
		quantity, _ := row.Quantity.Float64()
		value, _ := row.Value.Float64()
		out = append(out, domain.AssetSnapshotRow{
			Date:     row.Date.Time,
			Asset:    row.Asset,
			Quantity: quantity,
			Value:    value,
		})
	}
	return out, nil
}

func writeCsv(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
