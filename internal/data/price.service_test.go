package data

import (
	"math"
	"testing"
	"time"

	"pairtrade/internal/domain"
	"pairtrade/internal/repository"
	mock_repository "pairtrade/internal/repository/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func Test_priceService(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockSecurityPriceRepository(ctrl)
	service := NewPriceService(repo)

	bars := []domain.SecurityPrice{
		{Permno: 1, Date: day("2020-01-02"), Open: 10, Close: 11},
		{Permno: 1, Date: day("2020-01-03"), Open: math.NaN(), Close: 12},
		{Permno: 1, Date: day("2020-01-06"), Open: 13, Close: math.NaN()},
	}

	// the full series is loaded once and served from cache afterwards
	repo.EXPECT().List(int32(1)).Return(bars, nil).Times(1)

	t.Run("open and close by date", func(t *testing.T) {
		price, err := service.Open(1, day("2020-01-02"))
		require.NoError(t, err)
		require.Equal(t, 10.0, price)

		price, err = service.Close(1, day("2020-01-03"))
		require.NoError(t, err)
		require.Equal(t, 12.0, price)
	})

	t.Run("null fields surface as nan", func(t *testing.T) {
		price, err := service.Open(1, day("2020-01-03"))
		require.NoError(t, err)
		require.True(t, math.IsNaN(price))

		price, err = service.Close(1, day("2020-01-06"))
		require.NoError(t, err)
		require.True(t, math.IsNaN(price))
	})

	t.Run("absent bar surfaces as nan", func(t *testing.T) {
		price, err := service.Open(1, day("2020-01-04"))
		require.NoError(t, err)
		require.True(t, math.IsNaN(price))
	})

	t.Run("observed dates include nan bars", func(t *testing.T) {
		dates, err := service.ObservedDates(1)
		require.NoError(t, err)
		require.Equal(t, []time.Time{day("2020-01-02"), day("2020-01-03"), day("2020-01-06")}, dates)
	})

	t.Run("unknown security returns the repository error", func(t *testing.T) {
		repo.EXPECT().List(int32(99)).Return(nil, &repository.NotFoundError{Permno: 99})

		_, err := service.Open(99, day("2020-01-02"))
		var notFoundErr *repository.NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})
}

func Test_priceService_tradingDays(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockSecurityPriceRepository(ctrl)
	service := NewPriceService(repo)

	days := []time.Time{day("2020-01-02"), day("2020-01-03"), day("2020-01-06")}
	repo.EXPECT().ListTradingDays(day("2020-01-02"), day("2020-01-06")).Return(days, nil)

	out, err := service.TradingDays(day("2020-01-02"), day("2020-01-06"))
	require.NoError(t, err)
	require.Equal(t, days, out)

	t.Run("range results seed the calendar cache", func(t *testing.T) {
		// no further repository call expected
		isTradingDay, err := service.IsTradingDay(day("2020-01-03"))
		require.NoError(t, err)
		require.True(t, isTradingDay)
	})

	t.Run("unknown dates are resolved and cached", func(t *testing.T) {
		repo.EXPECT().ListTradingDays(day("2020-01-04"), day("2020-01-04")).Return([]time.Time{}, nil).Times(1)

		isTradingDay, err := service.IsTradingDay(day("2020-01-04"))
		require.NoError(t, err)
		require.False(t, isTradingDay)

		isTradingDay, err = service.IsTradingDay(day("2020-01-04"))
		require.NoError(t, err)
		require.False(t, isTradingDay)
	})
}
