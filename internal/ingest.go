package internal

import (
	"fmt"
	"time"

	"pairtrade/internal/db/models/postgres/public/model"
	"pairtrade/internal/repository"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// IngestPrices pulls the daily bar history for one security and upserts it
// into the price table.
func IngestPrices(
	permno int32,
	ticker string,
	start time.Time,
	securityPriceRepository repository.SecurityPriceRepository,
) error {
	now := time.Now()
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&now),
		Symbol:   ticker,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	models := []model.SecurityPrice{}

	for iter.Next() {
		bar := iter.Bar()
		open := bar.Open.InexactFloat64()
		high := bar.High.InexactFloat64()
		low := bar.Low.InexactFloat64()
		clos := bar.AdjClose.InexactFloat64()
		volume := float64(bar.Volume)
		models = append(models, model.SecurityPrice{
			Permno:    permno,
			Date:      time.Unix(int64(bar.Timestamp), 0).UTC(),
			Open:      &open,
			High:      &high,
			Low:       &low,
			Close:     &clos,
			Volume:    &volume,
			CreatedAt: time.Now().UTC(),
		})
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to get prices for %s: %w", ticker, err)
	}

	return securityPriceRepository.Add(models)
}

// UpdateUniversePrices re-ingests bar history for every security active in
// the given range. Individual failures are collected so one bad ticker
// doesn't abort the whole run.
func UpdateUniversePrices(
	start, end time.Time,
	securityRepository repository.SecurityRepository,
	securityPriceRepository repository.SecurityPriceRepository,
) error {
	securities, err := securityRepository.ListActive(start, end)
	if err != nil {
		return err
	}
	if len(securities) == 0 {
		return fmt.Errorf("no active securities found")
	}

	errors := []error{}

	for _, s := range securities {
		err = IngestPrices(s.Permno, s.Ticker, start, securityPriceRepository)
		if err != nil {
			err = fmt.Errorf("failed to ingest historical prices for %s: %w", s.Ticker, err)
			fmt.Println(err)
			errors = append(errors, err)
		} else {
			fmt.Println("added", s.Ticker)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("failed to update %d/%d universe prices. first err: %w", len(errors), len(securities), errors[0])
	}

	return nil
}
