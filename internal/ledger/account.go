package ledger

import (
	"math"
	"sort"
	"strconv"
	"time"

	"pairtrade/internal/domain"
)

// holdings below this magnitude are treated as fully closed and removed
const zeroTolerance = 1e-10

// PriceSource resolves a security's trading price on a date. Implementations
// return NaN (not an error) when the security simply has no bar on that
// date; errors are reserved for unknown securities and infrastructure
// failures.
type PriceSource interface {
	Open(permno int32, date time.Time) (float64, error)
}

// Calendar answers whether a date is a recognized trading day.
type Calendar interface {
	IsTradingDay(date time.Time) (bool, error)
}

// Account models a cash-and-positions trading account over one backtest
// window. All pricing happens at the current date's open. The account holds
// a price capability by composition and is discarded once its histories are
// exported.
//
// Operations within a simulated day must run in order: Advance, ApplyTrades
// (or Liquidate), MarkToMarket.
type Account struct {
	date     time.Time
	cash     float64
	holdings map[int32]float64

	prices   PriceSource
	calendar Calendar

	transactionHistory []domain.TransactionRow
	capitalHistory     []domain.CapitalRow
	assetHistory       []domain.AssetSnapshotRow
}

func NewAccount(startDate time.Time, buyingPower float64, prices PriceSource, calendar Calendar) *Account {
	return &Account{
		date:     startDate,
		cash:     buyingPower,
		holdings: map[int32]float64{},
		prices:   prices,
		calendar: calendar,
	}
}

func (a *Account) Date() time.Time { return a.date }

func (a *Account) Cash() float64 { return a.cash }

// Holdings returns a copy of the current signed positions.
func (a *Account) Holdings() map[int32]float64 {
	out := make(map[int32]float64, len(a.holdings))
	for permno, quantity := range a.holdings {
		out[permno] = quantity
	}
	return out
}

// Advance moves the account to date. Moving backward fails with
// *TemporalOrderError and a non-trading day fails with *NonTradingDayError.
// Re-advancing to the current date is a no-op.
func (a *Account) Advance(date time.Time) error {
	if date.Before(a.date) {
		return &TemporalOrderError{Current: a.date, Requested: date}
	}

	isTradingDay, err := a.calendar.IsTradingDay(date)
	if err != nil {
		return err
	}
	if !isTradingDay {
		return &NonTradingDayError{Date: date}
	}

	a.date = date
	return nil
}

// ApplyTrades executes a batch of signed-quantity trades at the current
// date's prices, in input order. The batch is NOT atomic: on failure,
// already-applied trades stay applied and the caller must abandon the
// window. After the full batch, negative cash fails with
// *InsufficientFundsError unless allowNegativeCash is set.
func (a *Account) ApplyTrades(trades []domain.Trade, allowNegativeCash bool) error {
	for _, trade := range trades {
		price, err := a.price(trade.Permno)
		if err != nil {
			return err
		}

		a.cash -= trade.Quantity * price
		a.holdings[trade.Permno] += trade.Quantity
		if math.Abs(a.holdings[trade.Permno]) < zeroTolerance {
			delete(a.holdings, trade.Permno)
		}

		a.transactionHistory = append(a.transactionHistory, domain.TransactionRow{
			Date:     a.date,
			Permno:   trade.Permno,
			Quantity: trade.Quantity,
			Price:    price,
		})
	}

	if !allowNegativeCash && a.cash < 0 {
		return &InsufficientFundsError{Cash: a.cash}
	}

	return nil
}

// Liquidate closes every holding at the current date's prices, converting
// them to cash, and performs the same post-check as ApplyTrades.
func (a *Account) Liquidate(allowNegativeCash bool) error {
	for _, permno := range a.heldPermnos() {
		quantity := a.holdings[permno]
		price, err := a.price(permno)
		if err != nil {
			return err
		}

		a.cash += quantity * price
		a.transactionHistory = append(a.transactionHistory, domain.TransactionRow{
			Date:     a.date,
			Permno:   permno,
			Quantity: -quantity,
			Price:    price,
		})
	}
	a.holdings = map[int32]float64{}

	if !allowNegativeCash && a.cash < 0 {
		return &InsufficientFundsError{Cash: a.cash}
	}

	return nil
}

// MarkToMarket revalues every holding at the current date, appends one
// asset snapshot row per holding plus a CASH row, and records the day's
// total capital. Call exactly once per trading day, after that day's
// transactions or liquidation, so the capital history stays aligned
// one row per day.
func (a *Account) MarkToMarket() error {
	assetValue := 0.0
	for _, permno := range a.heldPermnos() {
		quantity := a.holdings[permno]
		price, err := a.price(permno)
		if err != nil {
			return err
		}

		value := quantity * price
		assetValue += value
		a.assetHistory = append(a.assetHistory, domain.AssetSnapshotRow{
			Date:     a.date,
			Asset:    strconv.FormatInt(int64(permno), 10),
			Quantity: quantity,
			Value:    value,
		})
	}

	a.assetHistory = append(a.assetHistory, domain.AssetSnapshotRow{
		Date:     a.date,
		Asset:    domain.CashAsset,
		Quantity: 1,
		Value:    a.cash,
	})
	a.capitalHistory = append(a.capitalHistory, domain.CapitalRow{
		Date:    a.date,
		Capital: a.cash + assetValue,
	})

	return nil
}

// TotalReturn is (last capital - first capital) / first capital over the
// recorded capital history. Fails with *EmptyHistoryError before the first
// MarkToMarket.
func (a *Account) TotalReturn() (float64, error) {
	if len(a.capitalHistory) == 0 {
		return 0, &EmptyHistoryError{}
	}

	first := a.capitalHistory[0].Capital
	last := a.capitalHistory[len(a.capitalHistory)-1].Capital
	return (last - first) / first, nil
}

func (a *Account) TransactionHistory() []domain.TransactionRow {
	out := make([]domain.TransactionRow, len(a.transactionHistory))
	copy(out, a.transactionHistory)
	return out
}

func (a *Account) CapitalHistory() []domain.CapitalRow {
	out := make([]domain.CapitalRow, len(a.capitalHistory))
	copy(out, a.capitalHistory)
	return out
}

func (a *Account) AssetHistory() []domain.AssetSnapshotRow {
	out := make([]domain.AssetSnapshotRow, len(a.assetHistory))
	copy(out, a.assetHistory)
	return out
}

func (a *Account) price(permno int32) (float64, error) {
	price, err := a.prices.Open(permno, a.date)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(price) {
		return 0, &PriceUnavailableError{Permno: permno, Date: a.date}
	}
	return price, nil
}

// map iteration order is randomized; history rows must not be
func (a *Account) heldPermnos() []int32 {
	permnos := make([]int32, 0, len(a.holdings))
	for permno := range a.holdings {
		permnos = append(permnos, permno)
	}
	sort.Slice(permnos, func(i, j int) bool { return permnos[i] < permnos[j] })
	return permnos
}
