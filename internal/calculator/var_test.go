package calculator

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pairtrade/internal/domain"
	"pairtrade/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePriceService struct {
	bars map[int32][]domain.SecurityPrice
}

func (f fakePriceService) Open(permno int32, date time.Time) (float64, error)  { panic("not used") }
func (f fakePriceService) Close(permno int32, date time.Time) (float64, error) { panic("not used") }
func (f fakePriceService) ObservedDates(permno int32) ([]time.Time, error)     { panic("not used") }
func (f fakePriceService) IsTradingDay(date time.Time) (bool, error)           { panic("not used") }
func (f fakePriceService) TradingDays(start, end time.Time) ([]time.Time, error) {
	panic("not used")
}

func (f fakePriceService) Bars(permno int32) ([]domain.SecurityPrice, error) {
	return f.bars[permno], nil
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func Test_dailyWeights(t *testing.T) {
	permnos := []int32{1, 2}
	assetHistory := []domain.AssetSnapshotRow{
		{Date: day("2020-01-02"), Asset: "1", Quantity: 3, Value: 30},
		{Date: day("2020-01-02"), Asset: "2", Quantity: -1, Value: -10},
		{Date: day("2020-01-02"), Asset: domain.CashAsset, Quantity: 1, Value: 5},
		{Date: day("2020-01-03"), Asset: domain.CashAsset, Quantity: 1, Value: 25},
	}

	snapshots := dailyWeights(permnos, assetHistory)
	require.Len(t, snapshots, 2)

	require.Equal(t, day("2020-01-02"), snapshots[0].date)
	require.InDelta(t, 0.75, snapshots[0].weights[0], 1e-12)
	require.InDelta(t, -0.25, snapshots[0].weights[1], 1e-12)

	// cash-only day carries zero market exposure
	require.Equal(t, day("2020-01-03"), snapshots[1].date)
	require.Zero(t, snapshots[1].weights[0])
	require.Zero(t, snapshots[1].weights[1])
}

func Test_portfolioVariance(t *testing.T) {
	weights := []float64{0.5, 0.5}
	covariance := [][]float64{
		{0.04, 0.02},
		{0.02, 0.09},
	}

	require.InDelta(t, 0.0425, portfolioVariance(weights, covariance), 1e-12)
}

func Test_normalQuantile(t *testing.T) {
	quantile, err := normalQuantile(0.05)
	require.NoError(t, err)
	require.InDelta(t, -1.645, quantile, 0.05)

	t.Run("rejects out of range significance", func(t *testing.T) {
		_, err := normalQuantile(0)
		require.Error(t, err)
		_, err = normalQuantile(1.5)
		require.Error(t, err)
	})
}

func Test_ComputeValueAtRisk(t *testing.T) {
	dir := t.TempDir()

	windowsPath := filepath.Join(dir, "windows.csv")
	require.NoError(t, os.WriteFile(windowsPath, []byte(
		"train_start,train_end,test_start,test_end\n"+
			"2020-01-02,2020-01-10,2020-01-13,2020-01-17\n",
	), 0o644))

	topPairsDir := filepath.Join(dir, "top_pairs")
	require.NoError(t, os.MkdirAll(topPairsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(topPairsDir, "top_pairs_for_2020-01-13.csv"), []byte(
		"permno1,permno2,p_value,alpha,beta,spread_sd\n"+
			"1,2,0.01,1,0,0.5\n",
	), 0o644))

	assetHistoryDir := filepath.Join(dir, "asset_history")
	require.NoError(t, os.MkdirAll(assetHistoryDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(assetHistoryDir, "asset_history_for_2020-01-13.csv"), []byte(
		"timestamp,permno,quantity,value\n"+
			"2020-01-13,1,2,20\n"+
			"2020-01-13,2,-2,-20\n"+
			"2020-01-13,CASH,1,5\n"+
			"2020-01-14,CASH,1,25\n",
	), 0o644))

	// daily closes with alternating moves so returns have variance; the two
	// legs move differently so the hedge is imperfect
	bars := map[int32][]domain.SecurityPrice{}
	for _, permno := range []int32{1, 2} {
		price := 100.0
		for i := 0; i < 7; i++ {
			bars[permno] = append(bars[permno], domain.SecurityPrice{
				Permno: permno,
				Date:   day("2020-01-02").AddDate(0, 0, i),
				Close:  price,
			})
			if i%2 == int(permno)%2 {
				price *= 1.02
			} else {
				price *= 0.99
			}
		}
	}

	outputPath := filepath.Join(dir, "value_at_risk.csv")
	handler := ValueAtRiskHandler{
		PriceService:       fakePriceService{bars: bars},
		TopPairsRepository: repository.NewTopPairsRepository(),
		WindowRepository:   repository.NewWindowRepository(),
		OutputRepository:   repository.NewSimulationOutputRepository(),
		Logger:             zap.NewNop().Sugar(),
	}

	err := handler.ComputeValueAtRisk(ComputeValueAtRiskInput{
		WindowsPath:     windowsPath,
		TopPairsDir:     topPairsDir,
		AssetHistoryDir: assetHistoryDir,
		OutputPath:      outputPath,
		Significance:    0.05,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "timestamp,var", lines[0])
	// the exposed day carries positive VaR; the cash-only day none
	require.Contains(t, lines[1], "2020-01-13,")
	require.NotEqual(t, "2020-01-13,0", lines[1])
	require.Equal(t, "2020-01-14,0", lines[2])
}

func Test_overlap(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{5, 6}

	ta, tb := overlap(a, b)
	require.Equal(t, []float64{3, 4}, ta)
	require.Equal(t, []float64{5, 6}, tb)
	require.False(t, math.IsNaN(ta[0]))
}
