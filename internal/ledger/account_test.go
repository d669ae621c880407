package ledger

import (
	"math"
	"testing"
	"time"

	"pairtrade/internal/domain"

	"github.com/stretchr/testify/require"
)

type fakePriceSource struct {
	// permno -> YYYY-MM-DD -> open
	prices map[int32]map[string]float64
}

func (f fakePriceSource) Open(permno int32, date time.Time) (float64, error) {
	price, ok := f.prices[permno][date.Format(time.DateOnly)]
	if !ok {
		return math.NaN(), nil
	}
	return price, nil
}

type fakeCalendar struct {
	nonTradingDays map[string]bool
}

func (f fakeCalendar) IsTradingDay(date time.Time) (bool, error) {
	return !f.nonTradingDays[date.Format(time.DateOnly)], nil
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestAccount(startDate string, buyingPower float64) *Account {
	prices := fakePriceSource{
		prices: map[int32]map[string]float64{
			93418: {
				"2016-07-01": 5.11,
				"2016-07-05": 5.11,
				"2016-07-07": 5.12,
				"2016-07-08": 5.12,
			},
			93416: {
				"2016-07-01": 12.34,
				"2016-07-05": 12.24,
				"2016-07-07": 12.28,
				"2016-07-08": 12.28,
			},
		},
	}
	calendar := fakeCalendar{
		nonTradingDays: map[string]bool{
			"2016-07-02": true,
			"2016-07-03": true,
			"2016-07-04": true,
			"2024-01-06": true,
		},
	}
	return NewAccount(day(startDate), buyingPower, prices, calendar)
}

func Test_Advance(t *testing.T) {
	account := newTestAccount("2024-01-01", 1000)

	require.NoError(t, account.Advance(day("2024-01-02")))
	require.Equal(t, day("2024-01-02"), account.Date())

	require.NoError(t, account.Advance(day("2024-01-03")))

	// re-advancing to the same date is a no-op
	require.NoError(t, account.Advance(day("2024-01-03")))
	require.Equal(t, day("2024-01-03"), account.Date())

	t.Run("cannot move backward", func(t *testing.T) {
		err := account.Advance(day("2024-01-02"))
		var temporalErr *TemporalOrderError
		require.ErrorAs(t, err, &temporalErr)
		require.Equal(t, day("2024-01-03"), temporalErr.Current)
	})

	t.Run("cannot advance to a non-trading day", func(t *testing.T) {
		err := account.Advance(day("2024-01-06"))
		var nonTradingErr *NonTradingDayError
		require.ErrorAs(t, err, &nonTradingErr)
		// the failed advance must not move the account
		require.Equal(t, day("2024-01-03"), account.Date())
	})
}

func Test_ApplyTrades(t *testing.T) {
	t.Run("buy and sell one security", func(t *testing.T) {
		account := newTestAccount("2016-07-01", 100)

		require.NoError(t, account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: 1}}, false))
		require.Equal(t, map[int32]float64{93418: 1}, account.Holdings())
		require.InDelta(t, 100-5.11, account.Cash(), 1e-9)

		require.NoError(t, account.Advance(day("2016-07-05")))
		require.NoError(t, account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: 10}}, false))
		require.Equal(t, map[int32]float64{93418: 11}, account.Holdings())
		require.InDelta(t, 100-5.11*11, account.Cash(), 1e-9)

		require.NoError(t, account.Advance(day("2016-07-07")))
		require.NoError(t, account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: -5}}, false))
		require.Equal(t, map[int32]float64{93418: 6}, account.Holdings())
		require.InDelta(t, 100-5.11*11+5.12*5, account.Cash(), 1e-9)

		require.NoError(t, account.Advance(day("2016-07-08")))
		require.NoError(t, account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: -6}}, false))
		require.Empty(t, account.Holdings())
		require.InDelta(t, 100-5.11*11+5.12*11, account.Cash(), 1e-9)

		require.Equal(t, []domain.TransactionRow{
			{Date: day("2016-07-01"), Permno: 93418, Quantity: 1, Price: 5.11},
			{Date: day("2016-07-05"), Permno: 93418, Quantity: 10, Price: 5.11},
			{Date: day("2016-07-07"), Permno: 93418, Quantity: -5, Price: 5.12},
			{Date: day("2016-07-08"), Permno: 93418, Quantity: -6, Price: 5.12},
		}, account.TransactionHistory())
	})

	t.Run("long and short legs together", func(t *testing.T) {
		account := newTestAccount("2016-07-01", 100)

		require.NoError(t, account.ApplyTrades([]domain.Trade{
			{Permno: 93418, Quantity: 1},
			{Permno: 93416, Quantity: -1},
		}, false))
		require.Equal(t, map[int32]float64{93418: 1, 93416: -1}, account.Holdings())
		require.InDelta(t, 100-5.11+12.34, account.Cash(), 1e-9)

		require.NoError(t, account.Advance(day("2016-07-05")))
		require.NoError(t, account.ApplyTrades([]domain.Trade{
			{Permno: 93418, Quantity: 10},
			{Permno: 93416, Quantity: -5},
		}, false))
		require.Equal(t, map[int32]float64{93418: 11, 93416: -6}, account.Holdings())
		require.InDelta(t, 100-5.11*11+12.34+12.24*5, account.Cash(), 1e-9)

		require.NoError(t, account.Advance(day("2016-07-07")))
		require.NoError(t, account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: -5}}, false))

		require.NoError(t, account.Advance(day("2016-07-08")))
		require.NoError(t, account.ApplyTrades([]domain.Trade{
			{Permno: 93418, Quantity: -6},
			{Permno: 93416, Quantity: 6},
		}, false))
		require.Empty(t, account.Holdings())
		require.InDelta(t, 100-5.11*11+5.12*11+12.34+12.24*5-12.28*6, account.Cash(), 1e-9)

		require.Equal(t, []domain.TransactionRow{
			{Date: day("2016-07-01"), Permno: 93418, Quantity: 1, Price: 5.11},
			{Date: day("2016-07-01"), Permno: 93416, Quantity: -1, Price: 12.34},
			{Date: day("2016-07-05"), Permno: 93418, Quantity: 10, Price: 5.11},
			{Date: day("2016-07-05"), Permno: 93416, Quantity: -5, Price: 12.24},
			{Date: day("2016-07-07"), Permno: 93418, Quantity: -5, Price: 5.12},
			{Date: day("2016-07-08"), Permno: 93418, Quantity: -6, Price: 5.12},
			{Date: day("2016-07-08"), Permno: 93416, Quantity: 6, Price: 12.28},
		}, account.TransactionHistory())
	})

	t.Run("insufficient funds", func(t *testing.T) {
		account := newTestAccount("2016-07-01", 10)

		require.NoError(t, account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: 1}}, false))
		require.InDelta(t, 10-5.11, account.Cash(), 1e-9)

		err := account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: 20}}, false)
		var fundsErr *InsufficientFundsError
		require.ErrorAs(t, err, &fundsErr)

		// the batch is not atomic; the failed buy stays applied
		require.Equal(t, map[int32]float64{93418: 21}, account.Holdings())
	})

	t.Run("negative cash allowed on margin", func(t *testing.T) {
		account := newTestAccount("2016-07-01", 10)

		require.NoError(t, account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: 20}}, true))
		require.InDelta(t, 10-5.11*20, account.Cash(), 1e-9)
	})

	t.Run("unpriceable security", func(t *testing.T) {
		account := newTestAccount("2016-07-01", 100)
		require.NoError(t, account.Advance(day("2016-07-06")))

		err := account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: 1}}, false)
		var priceErr *PriceUnavailableError
		require.ErrorAs(t, err, &priceErr)
		require.Equal(t, int32(93418), priceErr.Permno)
	})

	t.Run("dust positions are removed", func(t *testing.T) {
		account := newTestAccount("2016-07-01", 100)

		require.NoError(t, account.ApplyTrades([]domain.Trade{
			{Permno: 93418, Quantity: 0.1},
			{Permno: 93418, Quantity: 0.2},
			{Permno: 93418, Quantity: -0.3},
		}, false))
		require.Empty(t, account.Holdings())
	})
}

func Test_Liquidate(t *testing.T) {
	t.Run("round trip in one day", func(t *testing.T) {
		account := newTestAccount("2016-07-01", 100)

		require.NoError(t, account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: 1}}, false))
		require.NoError(t, account.Liquidate(false))
		require.Empty(t, account.Holdings())
		require.InDelta(t, 100, account.Cash(), 1e-9)

		require.Equal(t, []domain.TransactionRow{
			{Date: day("2016-07-01"), Permno: 93418, Quantity: 1, Price: 5.11},
			{Date: day("2016-07-01"), Permno: 93418, Quantity: -1, Price: 5.11},
		}, account.TransactionHistory())
	})

	t.Run("unwinds both sides at final prices", func(t *testing.T) {
		account := newTestAccount("2016-07-01", 100)

		require.NoError(t, account.ApplyTrades([]domain.Trade{
			{Permno: 93418, Quantity: 1},
			{Permno: 93416, Quantity: -1},
		}, false))
		require.NoError(t, account.Advance(day("2016-07-05")))
		require.NoError(t, account.ApplyTrades([]domain.Trade{
			{Permno: 93418, Quantity: 10},
			{Permno: 93416, Quantity: -5},
		}, false))
		require.NoError(t, account.Advance(day("2016-07-07")))
		require.NoError(t, account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: -5}}, false))

		require.NoError(t, account.Advance(day("2016-07-08")))
		require.NoError(t, account.Liquidate(false))
		require.Empty(t, account.Holdings())
		require.InDelta(t, 100-5.11*11+5.12*11+12.34+12.24*5-12.28*6, account.Cash(), 1e-9)

		history := account.TransactionHistory()
		// closing rows come out ordered by permno
		require.Equal(t, []domain.TransactionRow{
			{Date: day("2016-07-08"), Permno: 93416, Quantity: 6, Price: 12.28},
			{Date: day("2016-07-08"), Permno: 93418, Quantity: -6, Price: 5.12},
		}, history[len(history)-2:])
	})

	t.Run("negative cash after unwinding a short", func(t *testing.T) {
		account := newTestAccount("2016-07-01", 0)

		require.NoError(t, account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: -10}}, false))
		require.NoError(t, account.Advance(day("2016-07-07")))

		err := account.Liquidate(false)
		var fundsErr *InsufficientFundsError
		require.ErrorAs(t, err, &fundsErr)
	})
}

func Test_MarkToMarket(t *testing.T) {
	account := newTestAccount("2016-07-01", 100)

	require.NoError(t, account.ApplyTrades([]domain.Trade{
		{Permno: 93418, Quantity: 1},
		{Permno: 93416, Quantity: -1},
	}, false))
	require.NoError(t, account.MarkToMarket())

	require.NoError(t, account.Advance(day("2016-07-05")))
	require.NoError(t, account.ApplyTrades([]domain.Trade{
		{Permno: 93418, Quantity: 10},
		{Permno: 93416, Quantity: -5},
	}, false))
	require.NoError(t, account.MarkToMarket())

	require.NoError(t, account.Advance(day("2016-07-07")))
	require.NoError(t, account.ApplyTrades([]domain.Trade{{Permno: 93418, Quantity: -5}}, false))
	require.NoError(t, account.MarkToMarket())

	require.NoError(t, account.Advance(day("2016-07-08")))
	require.NoError(t, account.ApplyTrades([]domain.Trade{
		{Permno: 93418, Quantity: -6},
		{Permno: 93416, Quantity: 6},
	}, false))
	require.NoError(t, account.MarkToMarket())

	capitalHistory := account.CapitalHistory()
	require.Len(t, capitalHistory, 4)
	require.InDelta(t, 100, capitalHistory[0].Capital, 1e-9)
	require.InDelta(t, 100+0.10, capitalHistory[1].Capital, 1e-9)
	require.InDelta(t, 100+0.10+0.11-0.24, capitalHistory[2].Capital, 1e-9)
	require.InDelta(t, 100+0.10+0.11-0.24, capitalHistory[3].Capital, 1e-9)

	t.Run("snapshot rows cover holdings plus cash", func(t *testing.T) {
		assetHistory := account.AssetHistory()
		// 3 rows for each of the first three days, 1 cash row on the last
		require.Len(t, assetHistory, 10)

		firstDay := assetHistory[:3]
		require.Equal(t, "93416", firstDay[0].Asset)
		require.InDelta(t, -12.34, firstDay[0].Value, 1e-9)
		require.Equal(t, "93418", firstDay[1].Asset)
		require.InDelta(t, 5.11, firstDay[1].Value, 1e-9)
		require.Equal(t, domain.CashAsset, firstDay[2].Asset)
		require.InDelta(t, 1, firstDay[2].Quantity, 1e-9)
		require.InDelta(t, 100-5.11+12.34, firstDay[2].Value, 1e-9)

		lastRow := assetHistory[len(assetHistory)-1]
		require.Equal(t, domain.CashAsset, lastRow.Asset)
		require.Equal(t, day("2016-07-08"), lastRow.Date)
	})

	t.Run("total return from capital history", func(t *testing.T) {
		totalReturn, err := account.TotalReturn()
		require.NoError(t, err)
		require.InDelta(t, (100.10+0.11-0.24-100)/100, totalReturn, 1e-9)
	})
}

func Test_TotalReturn_emptyHistory(t *testing.T) {
	account := newTestAccount("2016-07-01", 100)

	_, err := account.TotalReturn()
	var emptyErr *EmptyHistoryError
	require.ErrorAs(t, err, &emptyErr)
}
