// Package screener discovers tradeable pairs for a window: it screens the
// liquid universe by log-price correlation, keeps the cointegrated pairs,
// and fits the spread model the signal engine consumes.
package screener

import (
	"fmt"
	"math"
	"sort"
	"time"

	"pairtrade/internal/data"
	"pairtrade/internal/domain"
	"pairtrade/internal/repository"
	"pairtrade/internal/util"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
)

type Handler struct {
	SecurityRepository repository.SecurityRepository
	PriceService       data.PriceService
	TopPairsRepository repository.TopPairsRepository
	Logger             *zap.SugaredLogger
}

type ScreenWindowInput struct {
	Window               domain.Window
	OutputPath           string
	UniverseSize         int
	CorrelationThreshold float64
	PValueThreshold      float64
	TopPairs             int
}

// ScreenWindow runs the full discovery pipeline over the window's training
// range and persists the selected pairs with their fitted parameters.
func (h Handler) ScreenWindow(in ScreenWindowInput) error {
	tradingDays, err := h.PriceService.TradingDays(in.Window.TrainStart, in.Window.TrainEnd)
	if err != nil {
		return err
	}
	if len(tradingDays) < 3 {
		return fmt.Errorf("training range %s to %s has too few trading days",
			in.Window.TrainStart.Format(time.DateOnly), in.Window.TrainEnd.Format(time.DateOnly))
	}

	active, err := h.SecurityRepository.ListActive(in.Window.TrainStart, in.Window.TrainEnd)
	if err != nil {
		return err
	}

	universe, logCloses, err := h.liquidUniverse(active, in.Window, len(tradingDays), in.UniverseSize)
	if err != nil {
		return err
	}
	h.Logger.Infof("screening %d liquid securities", len(universe))

	candidates, err := pairsByCorrelation(universe, logCloses, in.CorrelationThreshold)
	if err != nil {
		return err
	}
	h.Logger.Infof("found %d pairs with correlation above %.2f", len(candidates), in.CorrelationThreshold)

	type scoredPair struct {
		pair   domain.Pair
		pValue float64
	}
	cointegrated := []scoredPair{}
	for _, pair := range candidates {
		pValue, err := cointegrationPValue(logCloses[pair.Leg1], logCloses[pair.Leg2])
		if err != nil {
			return err
		}
		if pValue < in.PValueThreshold {
			cointegrated = append(cointegrated, scoredPair{pair: pair, pValue: pValue})
		}
	}

	sort.SliceStable(cointegrated, func(i, j int) bool {
		return cointegrated[i].pValue < cointegrated[j].pValue
	})
	if len(cointegrated) > in.TopPairs {
		cointegrated = cointegrated[:in.TopPairs]
	}

	rows := make([]repository.TopPairRow, 0, len(cointegrated))
	for _, scored := range cointegrated {
		alpha, beta, err := olsFit(logCloses[scored.pair.Leg2], logCloses[scored.pair.Leg1])
		if err != nil {
			return err
		}

		spread := make([]float64, len(logCloses[scored.pair.Leg1]))
		for i := range spread {
			spread[i] = logCloses[scored.pair.Leg1][i] - alpha*logCloses[scored.pair.Leg2][i] - beta
		}
		spreadSd, err := stats.StandardDeviationPopulation(spread)
		if err != nil {
			return err
		}

		rows = append(rows, repository.TopPairRow{
			Permno1:  scored.pair.Leg1,
			Permno2:  scored.pair.Leg2,
			PValue:   scored.pValue,
			Alpha:    alpha,
			Beta:     beta,
			SpreadSd: spreadSd,
		})
	}

	h.Logger.Infof("selected %d cointegrated pairs", len(rows))
	return h.TopPairsRepository.Save(in.OutputPath, rows)
}

// liquidUniverse keeps securities with a full, gap-free close series over
// the training range and returns the top universeSize by mean market cap,
// along with their aligned log-close series.
func (h Handler) liquidUniverse(
	active []domain.Security,
	window domain.Window,
	numTradingDays int,
	universeSize int,
) ([]int32, map[int32][]float64, error) {
	type liquidity struct {
		permno int32
		avgCap float64
		series []float64
	}

	liquid := []liquidity{}
	for _, security := range active {
		bars, err := h.PriceService.Bars(security.Permno)
		if err != nil {
			return nil, nil, err
		}

		closes := []float64{}
		caps := []float64{}
		complete := true
		for _, bar := range bars {
			if !util.DateGte(bar.Date, window.TrainStart) || !util.DateLte(bar.Date, window.TrainEnd) {
				continue
			}
			if math.IsNaN(bar.Close) {
				complete = false
				break
			}
			closes = append(closes, bar.Close)
			caps = append(caps, bar.MarketCap)
		}
		if !complete || len(closes) != numTradingDays {
			continue
		}

		avgCap, err := stats.Mean(caps)
		if err != nil {
			return nil, nil, err
		}

		logCloses := make([]float64, len(closes))
		for i, c := range closes {
			logCloses[i] = math.Log(c)
		}
		liquid = append(liquid, liquidity{permno: security.Permno, avgCap: avgCap, series: logCloses})
	}

	sort.SliceStable(liquid, func(i, j int) bool { return liquid[i].avgCap > liquid[j].avgCap })
	if len(liquid) > universeSize {
		liquid = liquid[:universeSize]
	}

	permnos := make([]int32, 0, len(liquid))
	logCloses := map[int32][]float64{}
	for _, l := range liquid {
		permnos = append(permnos, l.permno)
		logCloses[l.permno] = l.series
	}

	return permnos, logCloses, nil
}

func pairsByCorrelation(permnos []int32, logCloses map[int32][]float64, threshold float64) ([]domain.Pair, error) {
	pairs := []domain.Pair{}
	for i := 0; i < len(permnos); i++ {
		for j := i + 1; j < len(permnos); j++ {
			correlation, err := stats.Correlation(logCloses[permnos[i]], logCloses[permnos[j]])
			if err != nil {
				return nil, err
			}
			if correlation > threshold {
				pairs = append(pairs, domain.Pair{Leg1: permnos[i], Leg2: permnos[j]})
			}
		}
	}
	return pairs, nil
}

// olsFit regresses y on x, returning the slope and intercept.
func olsFit(x, y []float64) (float64, float64, error) {
	covariance, err := stats.Covariance(x, y)
	if err != nil {
		return 0, 0, err
	}
	variance, err := stats.SampleVariance(x)
	if err != nil {
		return 0, 0, err
	}
	if variance == 0 {
		return 0, 0, fmt.Errorf("cannot fit OLS on constant series")
	}

	slope := covariance / variance
	meanX, err := stats.Mean(x)
	if err != nil {
		return 0, 0, err
	}
	meanY, err := stats.Mean(y)
	if err != nil {
		return 0, 0, err
	}

	return slope, meanY - slope*meanX, nil
}

// cointegrationPValue runs an Engle-Granger test on two log-price series:
// OLS residuals, then a Dickey-Fuller regression on the residuals, with the
// t-statistic mapped to an approximate p-value.
func cointegrationPValue(y, x []float64) (float64, error) {
	slope, intercept, err := olsFit(x, y)
	if err != nil {
		return 0, err
	}

	residuals := make([]float64, len(y))
	for i := range y {
		residuals[i] = y[i] - slope*x[i] - intercept
	}

	tStat, err := dickeyFullerT(residuals)
	if err != nil {
		return 0, err
	}

	return mackinnonPValue(tStat), nil
}

// dickeyFullerT fits delta(e_t) = gamma*e_{t-1} + err and returns the
// t-statistic of gamma.
func dickeyFullerT(series []float64) (float64, error) {
	n := len(series) - 1
	if n < 3 {
		return 0, fmt.Errorf("series too short for dickey-fuller test")
	}

	sumLagSq := 0.0
	sumLagDelta := 0.0
	for t := 1; t < len(series); t++ {
		lag := series[t-1]
		delta := series[t] - series[t-1]
		sumLagSq += lag * lag
		sumLagDelta += lag * delta
	}
	if sumLagSq == 0 {
		return 0, fmt.Errorf("degenerate residual series")
	}

	gamma := sumLagDelta / sumLagSq

	rss := 0.0
	for t := 1; t < len(series); t++ {
		lag := series[t-1]
		delta := series[t] - series[t-1]
		e := delta - gamma*lag
		rss += e * e
	}

	s2 := rss / float64(n-1)
	se := math.Sqrt(s2 / sumLagSq)
	if se == 0 {
		// an exact AR(1) fit has no residual variance; a negative gamma then
		// means the series reverts fully every step
		if gamma < 0 {
			return math.Inf(-1), nil
		}
		return 0, fmt.Errorf("degenerate residual series")
	}

	return gamma / se, nil
}

// mackinnonAnchors are (t-statistic, p-value) points for the two-variable
// Engle-Granger distribution with constant. The screener only thresholds
// and ranks on p, so linear interpolation between anchors is sufficient.
var mackinnonAnchors = [][2]float64{
	{-4.59, 0.001},
	{-3.90, 0.01},
	{-3.34, 0.05},
	{-3.04, 0.10},
	{-2.45, 0.25},
	{-1.95, 0.50},
	{-1.00, 0.90},
}

func mackinnonPValue(tStat float64) float64 {
	if tStat <= mackinnonAnchors[0][0] {
		return mackinnonAnchors[0][1]
	}
	for i := 1; i < len(mackinnonAnchors); i++ {
		if tStat <= mackinnonAnchors[i][0] {
			t0, p0 := mackinnonAnchors[i-1][0], mackinnonAnchors[i-1][1]
			t1, p1 := mackinnonAnchors[i][0], mackinnonAnchors[i][1]
			return p0 + (p1-p0)*(tStat-t0)/(t1-t0)
		}
	}
	return 0.99
}
