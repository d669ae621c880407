// Package calculator derives risk metrics from completed simulation runs.
package calculator

import (
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"sort"
	"time"

	"pairtrade/internal/data"
	"pairtrade/internal/domain"
	"pairtrade/internal/repository"
	"pairtrade/internal/util"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// quantileDraws is the number of standard normal draws used to estimate the
// loss quantile.
const quantileDraws = 100_000

type ValueAtRiskHandler struct {
	PriceService       data.PriceService
	TopPairsRepository repository.TopPairsRepository
	WindowRepository   repository.WindowRepository
	OutputRepository   repository.SimulationOutputRepository
	Logger             *zap.SugaredLogger
}

type ComputeValueAtRiskInput struct {
	WindowsPath     string
	TopPairsDir     string
	AssetHistoryDir string
	OutputPath      string
	// Significance is the VaR tail probability, e.g. 0.05 for 95% VaR.
	Significance float64
}

// ComputeValueAtRisk estimates daily parametric VaR for every simulated
// window. Asset return covariance is fit on the window's training range and
// combined with the portfolio weights recorded in the asset history.
func (h ValueAtRiskHandler) ComputeValueAtRisk(in ComputeValueAtRiskInput) error {
	windows, err := h.WindowRepository.List(in.WindowsPath)
	if err != nil {
		return err
	}

	quantile, err := normalQuantile(in.Significance)
	if err != nil {
		return err
	}

	out := []repository.ValueAtRiskRow{}
	for i, window := range windows {
		h.Logger.Infof("processing window %d of %d", i+1, len(windows))

		testStart := window.TestStart.Format(time.DateOnly)
		pairRows, err := h.TopPairsRepository.Load(
			filepath.Join(in.TopPairsDir, fmt.Sprintf("top_pairs_for_%s.csv", testStart)),
		)
		if err != nil {
			h.Logger.Errorf("skipping window %s: %v", testStart, err)
			continue
		}

		permnos := permnosFromPairs(pairRows)
		covariance, err := h.returnCovariance(permnos, window)
		if err != nil {
			h.Logger.Errorf("skipping window %s: %v", testStart, err)
			continue
		}

		assetHistory, err := h.OutputRepository.LoadAssetHistory(
			filepath.Join(in.AssetHistoryDir, fmt.Sprintf("asset_history_for_%s.csv", testStart)),
		)
		if err != nil {
			h.Logger.Errorf("skipping window %s: %v", testStart, err)
			continue
		}

		for _, snapshot := range dailyWeights(permnos, assetHistory) {
			portfolioStd := math.Sqrt(portfolioVariance(snapshot.weights, covariance))
			out = append(out, repository.ValueAtRiskRow{
				Date: repository.Date{Time: snapshot.date},
				VaR:  decimal.NewFromFloat(-portfolioStd * quantile),
			})
		}
	}

	return h.OutputRepository.SaveValueAtRisk(in.OutputPath, out)
}

// returnCovariance builds the sample covariance matrix of daily close-to-close
// returns over the window's training range, indexed like permnos.
func (h ValueAtRiskHandler) returnCovariance(permnos []int32, window domain.Window) ([][]float64, error) {
	returns := make([][]float64, len(permnos))
	for i, permno := range permnos {
		bars, err := h.PriceService.Bars(permno)
		if err != nil {
			return nil, err
		}

		closes := []float64{}
		for _, bar := range bars {
			if !util.DateGte(bar.Date, window.TrainStart) || !util.DateLte(bar.Date, window.TrainEnd) {
				continue
			}
			if !math.IsNaN(bar.Close) {
				closes = append(closes, bar.Close)
			}
		}
		if len(closes) < 3 {
			return nil, fmt.Errorf("security %d has too few closes in training range", permno)
		}

		returns[i] = make([]float64, len(closes)-1)
		for t := 1; t < len(closes); t++ {
			returns[i][t-1] = closes[t]/closes[t-1] - 1
		}
	}

	covariance := make([][]float64, len(permnos))
	for i := range permnos {
		covariance[i] = make([]float64, len(permnos))
	}
	for i := range permnos {
		for j := i; j < len(permnos); j++ {
			c, err := stats.Covariance(overlap(returns[i], returns[j]))
			if err != nil {
				return nil, err
			}
			covariance[i][j] = c
			covariance[j][i] = c
		}
	}
	return covariance, nil
}

// overlap trims two return series to a common length so a security with a
// shorter history doesn't break the covariance fit.
func overlap(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[len(a)-n:], b[len(b)-n:]
}

type weightSnapshot struct {
	date    time.Time
	weights []float64
}

// dailyWeights converts the asset history into per-day portfolio weights over
// permnos, normalized by gross exposure. Cash rows carry no market risk and
// are excluded. Days with no security exposure get all-zero weights.
func dailyWeights(permnos []int32, assetHistory []domain.AssetSnapshotRow) []weightSnapshot {
	index := map[int32]int{}
	for i, permno := range permnos {
		index[permno] = i
	}

	byDate := map[string]*weightSnapshot{}
	order := []string{}
	for _, row := range assetHistory {
		if row.Asset == domain.CashAsset {
			continue
		}
		var permno int32
		if _, err := fmt.Sscanf(row.Asset, "%d", &permno); err != nil {
			continue
		}
		i, ok := index[permno]
		if !ok {
			continue
		}

		key := row.Date.Format(time.DateOnly)
		snapshot, ok := byDate[key]
		if !ok {
			snapshot = &weightSnapshot{date: row.Date, weights: make([]float64, len(permnos))}
			byDate[key] = snapshot
			order = append(order, key)
		}
		snapshot.weights[i] = row.Value
	}

	// asset history rows may also record cash-only days; those still need a
	// (zero) VaR row
	for _, row := range assetHistory {
		key := row.Date.Format(time.DateOnly)
		if _, ok := byDate[key]; !ok {
			byDate[key] = &weightSnapshot{date: row.Date, weights: make([]float64, len(permnos))}
			order = append(order, key)
		}
	}
	sort.Strings(order)

	out := make([]weightSnapshot, 0, len(order))
	for _, key := range order {
		snapshot := byDate[key]
		gross := 0.0
		for _, w := range snapshot.weights {
			gross += math.Abs(w)
		}
		if gross > 0 {
			for i := range snapshot.weights {
				snapshot.weights[i] /= gross
			}
		}
		out = append(out, *snapshot)
	}
	return out
}

func portfolioVariance(weights []float64, covariance [][]float64) float64 {
	variance := 0.0
	for i := range weights {
		for j := range weights {
			variance += weights[i] * covariance[i][j] * weights[j]
		}
	}
	return variance
}

// normalQuantile estimates the alpha quantile of the standard normal by
// simulation.
func normalQuantile(alpha float64) (float64, error) {
	if alpha <= 0 || alpha >= 1 {
		return 0, fmt.Errorf("significance must be in (0, 1), got %f", alpha)
	}

	draws := make([]float64, quantileDraws)
	for i := range draws {
		draws[i] = rand.NormFloat64()
	}
	return stats.Percentile(draws, 100*alpha)
}

func permnosFromPairs(rows []repository.TopPairRow) []int32 {
	seen := map[int32]bool{}
	out := []int32{}
	for _, row := range rows {
		for _, permno := range []int32{row.Permno1, row.Permno2} {
			if !seen[permno] {
				seen[permno] = true
				out = append(out, permno)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
