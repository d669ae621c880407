package api

import (
	"fmt"
	"time"

	"pairtrade/internal/app"
	"pairtrade/internal/domain"
	"pairtrade/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BacktestRequest struct {
	TrainStart string `json:"trainStart"`
	TrainEnd   string `json:"trainEnd"`
	TestStart  string `json:"testStart"`
	TestEnd    string `json:"testEnd"`

	Pairs []struct {
		Permno1  int32   `json:"permno1"`
		Permno2  int32   `json:"permno2"`
		Alpha    float64 `json:"alpha"`
		Beta     float64 `json:"beta"`
		SpreadSd float64 `json:"spreadSd"`
	} `json:"pairs"`

	StartingCash      float64 `json:"startingCash"`
	DollarPerTrade    float64 `json:"dollarPerTrade"`
	AllowNegativeCash bool    `json:"allowNegativeCash"`
	EntryStdMultiple  float64 `json:"entryStdMultiple"`
	StopStdMultiple   float64 `json:"stopStdMultiple"`
}

type backtestTransaction struct {
	Date     string  `json:"date"`
	Permno   int32   `json:"permno"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

type backtestCapitalPoint struct {
	Date    string  `json:"date"`
	Capital float64 `json:"capital"`
}

type BacktestResponse struct {
	RunID             uuid.UUID              `json:"runId"`
	Return            float64                `json:"return"`
	UniquePairsTraded int                    `json:"uniquePairsTraded"`
	Transactions      []backtestTransaction  `json:"transactions"`
	CapitalHistory    []backtestCapitalPoint `json:"capitalHistory"`
}

func (h ApiHandler) backtest(c *gin.Context) {
	var requestBody BacktestRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(err, c)
		return
	}

	window, err := parseWindow(requestBody.TrainStart, requestBody.TrainEnd, requestBody.TestStart, requestBody.TestEnd)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	pairRows := make([]repository.TopPairRow, 0, len(requestBody.Pairs))
	for _, p := range requestBody.Pairs {
		pairRows = append(pairRows, repository.TopPairRow{
			Permno1:  p.Permno1,
			Permno2:  p.Permno2,
			Alpha:    p.Alpha,
			Beta:     p.Beta,
			SpreadSd: p.SpreadSd,
		})
	}

	in := app.RunWindowInput{
		Window:            *window,
		Pairs:             pairRows,
		StartingCash:      requestBody.StartingCash,
		DollarPerTrade:    requestBody.DollarPerTrade,
		AllowNegativeCash: requestBody.AllowNegativeCash,
		EntryStdMultiple:  requestBody.EntryStdMultiple,
		StopStdMultiple:   requestBody.StopStdMultiple,
	}
	if in.EntryStdMultiple == 0 {
		in.EntryStdMultiple = 2
	}
	if in.StopStdMultiple == 0 {
		in.StopStdMultiple = 4
	}

	result, err := h.SimulationHandler.RunWindow(in)
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to run backtest: %w", err), c)
		return
	}

	transactions := make([]backtestTransaction, 0, len(result.TransactionHistory))
	for _, row := range result.TransactionHistory {
		transactions = append(transactions, backtestTransaction{
			Date:     row.Date.Format(time.DateOnly),
			Permno:   row.Permno,
			Quantity: row.Quantity,
			Price:    row.Price,
		})
	}

	capitalHistory := make([]backtestCapitalPoint, 0, len(result.CapitalHistory))
	for _, row := range result.CapitalHistory {
		capitalHistory = append(capitalHistory, backtestCapitalPoint{
			Date:    row.Date.Format(time.DateOnly),
			Capital: row.Capital,
		})
	}

	c.JSON(200, BacktestResponse{
		RunID:             result.RunID,
		Return:            result.Return,
		UniquePairsTraded: result.UniquePairsTraded,
		Transactions:      transactions,
		CapitalHistory:    capitalHistory,
	})
}

func parseWindow(trainStart, trainEnd, testStart, testEnd string) (*domain.Window, error) {
	window := domain.Window{}
	for _, field := range []struct {
		name  string
		value string
		out   *time.Time
	}{
		{"trainStart", trainStart, &window.TrainStart},
		{"trainEnd", trainEnd, &window.TrainEnd},
		{"testStart", testStart, &window.TestStart},
		{"testEnd", testEnd, &window.TestEnd},
	} {
		parsed, err := time.Parse(time.DateOnly, field.value)
		if err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", field.name, err)
		}
		*field.out = parsed
	}

	if window.TestEnd.Before(window.TrainStart) {
		return nil, fmt.Errorf("test end cannot be before train start")
	}

	return &window, nil
}
