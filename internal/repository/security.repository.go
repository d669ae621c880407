package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pairtrade/internal/db/models/postgres/public/model"
	"pairtrade/internal/db/models/postgres/public/table"
	"pairtrade/internal/domain"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
)

type SecurityRepository interface {
	Add([]model.Security) error
	Get(permno int32) (*domain.Security, error)
	// SearchByTicker resolves the security listed under ticker on date.
	SearchByTicker(ticker string, date time.Time) (*domain.Security, error)
	// ListActive returns securities listed for the whole [start, end] range.
	ListActive(start, end time.Time) ([]domain.Security, error)
}

type securityRepositoryHandler struct {
	Db *sql.DB
}

func NewSecurityRepository(db *sql.DB) SecurityRepository {
	return securityRepositoryHandler{Db: db}
}

func (h securityRepositoryHandler) Add(securities []model.Security) error {
	if len(securities) == 0 {
		return nil
	}

	query := table.Security.
		INSERT(table.Security.AllColumns).
		MODELS(securities).
		ON_CONFLICT(table.Security.Permno).
		DO_UPDATE(
			postgres.SET(
				table.Security.Ticker.SET(table.Security.EXCLUDED.Ticker),
				table.Security.Name.SET(table.Security.EXCLUDED.Name),
				table.Security.BeginDate.SET(table.Security.EXCLUDED.BeginDate),
				table.Security.EndDate.SET(table.Security.EXCLUDED.EndDate),
			),
		)

	_, err := query.Exec(h.Db)
	if err != nil {
		return fmt.Errorf("failed to add securities to db: %w", err)
	}

	return nil
}

func (h securityRepositoryHandler) Get(permno int32) (*domain.Security, error) {
	query := table.Security.
		SELECT(table.Security.AllColumns).
		WHERE(table.Security.Permno.EQ(postgres.Int32(permno)))

	result := model.Security{}
	err := query.Query(h.Db, &result)
	if err == qrm.ErrNoRows {
		return nil, &NotFoundError{Permno: permno}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get security %d: %w", permno, err)
	}

	security := toDomainSecurity(result)
	return &security, nil
}

func (h securityRepositoryHandler) SearchByTicker(ticker string, date time.Time) (*domain.Security, error) {
	query := table.Security.
		SELECT(table.Security.AllColumns).
		WHERE(
			postgres.AND(
				table.Security.Ticker.EQ(postgres.String(ticker)),
				table.Security.BeginDate.LT_EQ(postgres.DateT(date)),
				table.Security.EndDate.GT_EQ(postgres.DateT(date)),
			),
		).
		LIMIT(1)

	result := model.Security{}
	err := query.Query(h.Db, &result)
	if err == qrm.ErrNoRows {
		return nil, &NotFoundError{Ticker: ticker}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search ticker %s on %v: %w", ticker, date, err)
	}

	security := toDomainSecurity(result)
	return &security, nil
}

func (h securityRepositoryHandler) ListActive(start, end time.Time) ([]domain.Security, error) {
	query := table.Security.
		SELECT(table.Security.AllColumns).
		WHERE(
			postgres.AND(
				table.Security.BeginDate.LT_EQ(postgres.DateT(start)),
				table.Security.EndDate.GT_EQ(postgres.DateT(end)),
			),
		).
		ORDER_BY(table.Security.Permno.ASC())

	results := []model.Security{}
	err := query.Query(h.Db, &results)
	if err != nil {
		return nil, fmt.Errorf("failed to list active securities: %w", err)
	}

	out := make([]domain.Security, 0, len(results))
	for _, row := range results {
		out = append(out, toDomainSecurity(row))
	}

	return out, nil
}

func toDomainSecurity(row model.Security) domain.Security {
	return domain.Security{
		Permno:    row.Permno,
		Ticker:    row.Ticker,
		Name:      row.Name,
		BeginDate: row.BeginDate,
		EndDate:   row.EndDate,
	}
}
