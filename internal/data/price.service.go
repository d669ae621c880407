// Package data serves daily prices out of a read-through cache over the
// price repository. Once a security's series is loaded it is held for the
// remainder of the process.
package data

import (
	"math"
	"sync"
	"time"

	"pairtrade/internal/domain"
	"pairtrade/internal/repository"
)

type PriceService interface {
	// Open returns the security's opening price on date, NaN when the
	// security has no bar (or a null open) that day. Errors are reserved
	// for securities with no backing data at all.
	Open(permno int32, date time.Time) (float64, error)
	// Close behaves like Open for the closing price.
	Close(permno int32, date time.Time) (float64, error)
	// ObservedDates returns every date the security has a bar for, ordered.
	ObservedDates(permno int32) ([]time.Time, error)
	// Bars returns the security's full daily series, ordered by date.
	Bars(permno int32) ([]domain.SecurityPrice, error)
	TradingDays(start, end time.Time) ([]time.Time, error)
	IsTradingDay(date time.Time) (bool, error)
}

type priceServiceHandler struct {
	securityPriceRepository repository.SecurityPriceRepository

	mu          sync.RWMutex
	series      map[int32]*securitySeries
	tradingDays map[string]bool
}

func NewPriceService(securityPriceRepository repository.SecurityPriceRepository) PriceService {
	return &priceServiceHandler{
		securityPriceRepository: securityPriceRepository,
		series:                  map[int32]*securitySeries{},
		tradingDays:             map[string]bool{},
	}
}

type securitySeries struct {
	bars  []domain.SecurityPrice
	dates []time.Time
	// keyed by YYYY-MM-DD
	open  map[string]float64
	close map[string]float64
}

func (h *priceServiceHandler) Open(permno int32, date time.Time) (float64, error) {
	series, err := h.load(permno)
	if err != nil {
		return 0, err
	}

	if price, ok := series.open[date.Format(time.DateOnly)]; ok {
		return price, nil
	}
	return math.NaN(), nil
}

func (h *priceServiceHandler) Close(permno int32, date time.Time) (float64, error) {
	series, err := h.load(permno)
	if err != nil {
		return 0, err
	}

	if price, ok := series.close[date.Format(time.DateOnly)]; ok {
		return price, nil
	}
	return math.NaN(), nil
}

func (h *priceServiceHandler) ObservedDates(permno int32) ([]time.Time, error) {
	series, err := h.load(permno)
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, len(series.dates))
	copy(out, series.dates)
	return out, nil
}

func (h *priceServiceHandler) Bars(permno int32) ([]domain.SecurityPrice, error) {
	series, err := h.load(permno)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SecurityPrice, len(series.bars))
	copy(out, series.bars)
	return out, nil
}

func (h *priceServiceHandler) TradingDays(start, end time.Time) ([]time.Time, error) {
	days, err := h.securityPriceRepository.ListTradingDays(start, end)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	for _, day := range days {
		h.tradingDays[day.Format(time.DateOnly)] = true
	}
	h.mu.Unlock()

	return days, nil
}

func (h *priceServiceHandler) IsTradingDay(date time.Time) (bool, error) {
	key := date.Format(time.DateOnly)

	h.mu.RLock()
	known, ok := h.tradingDays[key]
	h.mu.RUnlock()
	if ok {
		return known, nil
	}

	days, err := h.securityPriceRepository.ListTradingDays(date, date)
	if err != nil {
		return false, err
	}

	isTradingDay := len(days) > 0
	h.mu.Lock()
	h.tradingDays[key] = isTradingDay
	h.mu.Unlock()

	return isTradingDay, nil
}

func (h *priceServiceHandler) load(permno int32) (*securitySeries, error) {
	h.mu.RLock()
	cached, ok := h.series[permno]
	h.mu.RUnlock()
	if ok {
		return cached, nil
	}

	bars, err := h.securityPriceRepository.List(permno)
	if err != nil {
		return nil, err
	}

	series := &securitySeries{
		bars:  bars,
		open:  map[string]float64{},
		close: map[string]float64{},
	}
	for _, bar := range bars {
		key := bar.Date.Format(time.DateOnly)
		series.dates = append(series.dates, bar.Date)
		if !math.IsNaN(bar.Open) {
			series.open[key] = bar.Open
		}
		if !math.IsNaN(bar.Close) {
			series.close[key] = bar.Close
		}
	}

	h.mu.Lock()
	h.series[permno] = series
	h.mu.Unlock()

	return series, nil
}
