// Package app orchestrates backtest windows: it feeds the signal engine
// with the prior day's closes, sizes the resulting decisions at the current
// day's opens, and applies them to the account ledger.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pairtrade/internal/data"
	"pairtrade/internal/domain"
	"pairtrade/internal/ledger"
	"pairtrade/internal/repository"
	"pairtrade/internal/signal"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SimulationHandler struct {
	PriceService       data.PriceService
	TopPairsRepository repository.TopPairsRepository
	WindowRepository   repository.WindowRepository
	OutputRepository   repository.SimulationOutputRepository
	Logger             *zap.SugaredLogger
}

type RunWindowInput struct {
	Window            domain.Window
	Pairs             []repository.TopPairRow
	StartingCash      float64
	DollarPerTrade    float64
	AllowNegativeCash bool
	// band multiples applied to each pair's spread std;
	// conventionally 2x for entry and 4x for the stop
	EntryStdMultiple float64
	StopStdMultiple  float64
}

type RunWindowResponse struct {
	RunID              uuid.UUID
	Return             float64
	UniquePairsTraded  int
	TransactionHistory []domain.TransactionRow
	CapitalHistory     []domain.CapitalRow
	AssetHistory       []domain.AssetSnapshotRow
}

// RunWindow simulates one test window day by day. Any ledger or pricing
// failure aborts the window; partially applied state is discarded with it.
func (h SimulationHandler) RunWindow(in RunWindowInput) (*RunWindowResponse, error) {
	if len(in.Pairs) == 0 {
		return nil, fmt.Errorf("cannot simulate window with 0 pairs")
	}

	pairs := make([]domain.Pair, 0, len(in.Pairs))
	params := map[domain.Pair]domain.PairParams{}
	for _, row := range in.Pairs {
		pair := domain.Pair{Leg1: row.Permno1, Leg2: row.Permno2}
		pairs = append(pairs, pair)
		params[pair] = domain.PairParams{
			Alpha:     row.Alpha,
			Beta:      row.Beta,
			Threshold: in.EntryStdMultiple * row.SpreadSd,
			StopLoss:  in.StopStdMultiple * row.SpreadSd,
		}
	}

	states := domain.NewPairStates(pairs)
	engine := signal.NewEngine(pairs, params, states)
	sizer := signal.NewSizer(params, states, in.DollarPerTrade)

	permnos := uniquePermnos(pairs)

	lastObserved, err := h.lastObservedDates(permnos)
	if err != nil {
		return nil, err
	}

	// the simulation runs from the end of the training range through the
	// end of the test range
	tradingDays, err := h.PriceService.TradingDays(in.Window.TrainEnd, in.Window.TestEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list trading days: %w", err)
	}
	if len(tradingDays) < 2 {
		return nil, fmt.Errorf("window %s to %s has %d trading days, need at least 2",
			in.Window.TrainEnd.Format(time.DateOnly), in.Window.TestEnd.Format(time.DateOnly), len(tradingDays))
	}

	account := ledger.NewAccount(tradingDays[0], in.StartingCash, h.PriceService, h.PriceService)
	uniquePairsTraded := map[domain.Pair]bool{}

	for i := 1; i < len(tradingDays)-1; i++ {
		previousDay := tradingDays[i-1]
		currentDay := tradingDays[i]

		closes, err := h.closePrices(permnos, previousDay)
		if err != nil {
			return nil, err
		}

		// decide on the previous day's closes, trade at today's opens
		decisions := engine.Decide(previousDay, closes, lastObserved)
		for _, decision := range decisions {
			if decision.Target != domain.PositionSide_Flat {
				uniquePairsTraded[decision.Pair] = true
			}
		}

		opens, err := h.openPrices(permnos, currentDay)
		if err != nil {
			return nil, err
		}
		trades := sizer.Size(decisions, opens)

		if err := account.Advance(currentDay); err != nil {
			return nil, err
		}
		if err := account.ApplyTrades(trades, in.AllowNegativeCash); err != nil {
			return nil, err
		}
		if err := account.MarkToMarket(); err != nil {
			return nil, err
		}
	}

	// unwind everything on the final day
	if err := account.Advance(tradingDays[len(tradingDays)-1]); err != nil {
		return nil, err
	}
	if err := account.Liquidate(in.AllowNegativeCash); err != nil {
		return nil, err
	}
	if err := account.MarkToMarket(); err != nil {
		return nil, err
	}

	totalReturn, err := account.TotalReturn()
	if err != nil {
		return nil, err
	}

	windowReturn := 0.0
	if len(uniquePairsTraded) > 0 {
		windowReturn = in.StartingCash * totalReturn / float64(len(uniquePairsTraded))
	}

	return &RunWindowResponse{
		RunID:              uuid.New(),
		Return:             windowReturn,
		UniquePairsTraded:  len(uniquePairsTraded),
		TransactionHistory: account.TransactionHistory(),
		CapitalHistory:     account.CapitalHistory(),
		AssetHistory:       account.AssetHistory(),
	}, nil
}

type RunAllInput struct {
	WindowsPath       string
	TopPairsDir       string
	OutputDir         string
	StartingCash      float64
	DollarPerTrade    float64
	AllowNegativeCash bool
	EntryStdMultiple  float64
	StopStdMultiple   float64
}

// RunAll simulates every window in the schedule sequentially, exporting the
// audit trails per window and the per-window returns at the end. A failed
// window is logged and skipped; it is never resumed with corrupted state.
func (h SimulationHandler) RunAll(in RunAllInput) error {
	windows, err := h.WindowRepository.List(in.WindowsPath)
	if err != nil {
		return err
	}

	for _, dir := range []string{"transaction_history", "capital_history", "asset_history"} {
		if err := os.MkdirAll(filepath.Join(in.OutputDir, dir), 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	returns := []repository.WindowReturnRow{}
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

		response, err := h.RunWindow(RunWindowInput{
			Window:            window,
			Pairs:             pairRows,
			StartingCash:      in.StartingCash,
			DollarPerTrade:    in.DollarPerTrade,
			AllowNegativeCash: in.AllowNegativeCash,
			EntryStdMultiple:  in.EntryStdMultiple,
			StopStdMultiple:   in.StopStdMultiple,
		})
		if err != nil {
			h.Logger.Errorf("skipping window %s: %v", testStart, err)
			continue
		}

		h.Logger.Infow("window simulated",
			"runID", response.RunID,
			"testStart", testStart,
			"return", response.Return,
			"uniquePairsTraded", response.UniquePairsTraded,
		)

		err = h.OutputRepository.SaveTransactionHistory(
			filepath.Join(in.OutputDir, "transaction_history", fmt.Sprintf("transaction_history_for_%s.csv", testStart)),
			response.TransactionHistory,
		)
		if err != nil {
			return err
		}
		err = h.OutputRepository.SaveCapitalHistory(
			filepath.Join(in.OutputDir, "capital_history", fmt.Sprintf("capital_history_for_%s.csv", testStart)),
			response.CapitalHistory,
		)
		if err != nil {
			return err
		}
		err = h.OutputRepository.SaveAssetHistory(
			filepath.Join(in.OutputDir, "asset_history", fmt.Sprintf("asset_history_for_%s.csv", testStart)),
			response.AssetHistory,
		)
		if err != nil {
			return err
		}

		returns = append(returns, repository.WindowReturnRow{
			TestEnd: repository.Date{Time: window.TestEnd},
			Return:  decimal.NewFromFloat(response.Return),
		})
	}

	return h.OutputRepository.SaveWindowReturns(filepath.Join(in.OutputDir, "monthly_returns.csv"), returns)
}

// lastObservedDates maps each security to its second-to-last observed date,
// so a forced delisting exit still has a following open to execute against.
func (h SimulationHandler) lastObservedDates(permnos []int32) (map[int32]time.Time, error) {
	out := map[int32]time.Time{}
	for _, permno := range permnos {
		dates, err := h.PriceService.ObservedDates(permno)
		if err != nil {
			return nil, err
		}
		if len(dates) >= 2 {
			out[permno] = dates[len(dates)-2]
		} else if len(dates) == 1 {
			out[permno] = dates[0]
		} else {
			return nil, fmt.Errorf("security %d has no observed dates", permno)
		}
	}
	return out, nil
}

func (h SimulationHandler) closePrices(permnos []int32, date time.Time) (map[int32]float64, error) {
	prices := map[int32]float64{}
	for _, permno := range permnos {
		price, err := h.PriceService.Close(permno, date)
		if err != nil {
			return nil, err
		}
		prices[permno] = price
	}
	return prices, nil
}

func (h SimulationHandler) openPrices(permnos []int32, date time.Time) (map[int32]float64, error) {
	prices := map[int32]float64{}
	for _, permno := range permnos {
		price, err := h.PriceService.Open(permno, date)
		if err != nil {
			return nil, err
		}
		prices[permno] = price
	}
	return prices, nil
}

func uniquePermnos(pairs []domain.Pair) []int32 {
	seen := map[int32]bool{}
	out := []int32{}
	for _, pair := range pairs {
		for _, permno := range []int32{pair.Leg1, pair.Leg2} {
			if !seen[permno] {
				seen[permno] = true
				out = append(out, permno)
			}
		}
	}
	return out
}
