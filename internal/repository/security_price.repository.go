package repository

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"pairtrade/internal/db/models/postgres/public/model"
	"pairtrade/internal/db/models/postgres/public/table"
	"pairtrade/internal/domain"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
)

type SecurityPriceRepository interface {
	Add([]model.SecurityPrice) error
	// List returns the full daily series for a security, ordered by date.
	// A security with no rows at all fails with *NotFoundError.
	List(permno int32) ([]domain.SecurityPrice, error)
	ListTradingDays(start, end time.Time) ([]time.Time, error)
}

type securityPriceRepositoryHandler struct {
	Db *sql.DB
}

func NewSecurityPriceRepository(db *sql.DB) SecurityPriceRepository {
	return securityPriceRepositoryHandler{Db: db}
}

func (h securityPriceRepositoryHandler) Add(prices []model.SecurityPrice) error {
	if len(prices) == 0 {
		return nil
	}

	query := table.SecurityPrice.
		INSERT(table.SecurityPrice.AllColumns).
		MODELS(prices).
		ON_CONFLICT(
			table.SecurityPrice.Permno, table.SecurityPrice.Date,
		).DO_UPDATE(
		postgres.SET(
			table.SecurityPrice.Open.SET(table.SecurityPrice.EXCLUDED.Open),
			table.SecurityPrice.High.SET(table.SecurityPrice.EXCLUDED.High),
			table.SecurityPrice.Low.SET(table.SecurityPrice.EXCLUDED.Low),
			table.SecurityPrice.Close.SET(table.SecurityPrice.EXCLUDED.Close),
			table.SecurityPrice.Volume.SET(table.SecurityPrice.EXCLUDED.Volume),
			table.SecurityPrice.MarketCap.SET(table.SecurityPrice.EXCLUDED.MarketCap),
		),
	)

	_, err := query.Exec(h.Db)
	if err != nil {
		return fmt.Errorf("failed to add security prices to db: %w", err)
	}

	return nil
}

func (h securityPriceRepositoryHandler) List(permno int32) ([]domain.SecurityPrice, error) {
	query := table.SecurityPrice.
		SELECT(table.SecurityPrice.AllColumns).
		WHERE(table.SecurityPrice.Permno.EQ(postgres.Int32(permno))).
		ORDER_BY(table.SecurityPrice.Date.ASC())

	results := []model.SecurityPrice{}
	err := query.Query(h.Db, &results)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices for %d: %w", permno, err)
	}
	if len(results) == 0 {
		return nil, &NotFoundError{Permno: permno}
	}

	out := make([]domain.SecurityPrice, 0, len(results))
	for _, row := range results {
		out = append(out, domain.SecurityPrice{
			Permno:    row.Permno,
			Date:      row.Date,
			Open:      floatOrNaN(row.Open),
			High:      floatOrNaN(row.High),
			Low:       floatOrNaN(row.Low),
			Close:     floatOrNaN(row.Close),
			Volume:    floatOrNaN(row.Volume),
			MarketCap: floatOrNaN(row.MarketCap),
		})
	}

	return out, nil
}

func (h securityPriceRepositoryHandler) ListTradingDays(start, end time.Time) ([]time.Time, error) {
	query := table.SecurityPrice.
		SELECT(table.SecurityPrice.Date).
		DISTINCT().
		WHERE(
			table.SecurityPrice.Date.BETWEEN(
				postgres.DateT(start),
				postgres.DateT(end),
			),
		).
		ORDER_BY(table.SecurityPrice.Date.ASC())

	results := []model.SecurityPrice{}
	err := query.Query(h.Db, &results)
	if err != nil && err != qrm.ErrNoRows {
		return nil, fmt.Errorf("failed to list trading days: %w", err)
	}

	days := make([]time.Time, 0, len(results))
	for _, row := range results {
		days = append(days, row.Date)
	}

	return days, nil
}

// null db cells surface as NaN so absence propagates instead of erroring
func floatOrNaN(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}
