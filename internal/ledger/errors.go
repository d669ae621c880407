// Package ledger owns the simulated trading account: cash, holdings, and
// the append-only transaction/capital/asset histories.
package ledger

import (
	"fmt"
	"time"
)

// The account fails fast: any of these aborts the current simulation
// window. Callers match with errors.As; none of them is retried.

// TemporalOrderError reports an attempt to move the account date backward.
type TemporalOrderError struct {
	Current   time.Time
	Requested time.Time
}

func (e *TemporalOrderError) Error() string {
	return fmt.Sprintf("date %s must be after the current date %s",
		e.Requested.Format(time.DateOnly), e.Current.Format(time.DateOnly))
}

// NonTradingDayError reports an advance to a date the calendar does not
// recognize as a trading day.
type NonTradingDayError struct {
	Date time.Time
}

func (e *NonTradingDayError) Error() string {
	return fmt.Sprintf("%s is not a trading day", e.Date.Format(time.DateOnly))
}

// PriceUnavailableError reports a missing trading price for a security on
// the account's current date.
type PriceUnavailableError struct {
	Permno int32
	Date   time.Time
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("no trading price for %d on %s", e.Permno, e.Date.Format(time.DateOnly))
}

// InsufficientFundsError reports negative buying power after a transaction
// batch or liquidation when negative balances are disallowed. The batch is
// not rolled back; the caller must treat the window as invalid.
type InsufficientFundsError struct {
	Cash float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("buying power is negative after transaction: %f", e.Cash)
}

// EmptyHistoryError reports a total-return request before any capital row
// has been recorded.
type EmptyHistoryError struct{}

func (e *EmptyHistoryError) Error() string {
	return "capital history is empty"
}
