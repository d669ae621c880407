// Package cmd wires the CLI entrypoints around shared dependency setup.
package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"pairtrade/internal"
	"pairtrade/internal/app"
	"pairtrade/internal/calculator"
	"pairtrade/internal/screener"

	"github.com/spf13/cobra"
)

var (
	windowsPath string
	topPairsDir string
	outputDir   string

	startingCash      float64
	dollarPerTrade    float64
	allowNegativeCash bool
	entryStdMultiple  float64
	stopStdMultiple   float64

	universeSize         int
	correlationThreshold float64
	pValueThreshold      float64
	topPairs             int

	ingestStart  string
	ingestEnd    string
	significance float64
	apiPort      int
)

var rootCmd = &cobra.Command{
	Use:   "pairtrade",
	Short: "pairs trading research toolkit",
	Long:  "screens cointegrated equity pairs and backtests a mean-reversion strategy over rolling windows",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "refresh daily bars for every active security",
	RunE: func(c *cobra.Command, args []string) error {
		deps, err := InitializeDependencies()
		if err != nil {
			return err
		}
		defer CloseDependencies(deps)

		start, err := time.Parse(time.DateOnly, ingestStart)
		if err != nil {
			return fmt.Errorf("could not parse start date: %w", err)
		}
		end, err := time.Parse(time.DateOnly, ingestEnd)
		if err != nil {
			return fmt.Errorf("could not parse end date: %w", err)
		}

		return internal.UpdateUniversePrices(start, end, deps.SecurityRepository, deps.SecurityPriceRepository)
	},
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "find cointegrated pairs for every window",
	RunE: func(c *cobra.Command, args []string) error {
		deps, err := InitializeDependencies()
		if err != nil {
			return err
		}
		defer CloseDependencies(deps)

		windows, err := deps.SimulationHandler.WindowRepository.List(windowsPath)
		if err != nil {
			return err
		}

		for i, window := range windows {
			fmt.Printf("screening window %d of %d\n", i+1, len(windows))
			testStart := window.TestStart.Format(time.DateOnly)
			err := deps.ScreenerHandler.ScreenWindow(screener.ScreenWindowInput{
				Window:               window,
				OutputPath:           filepath.Join(topPairsDir, fmt.Sprintf("top_pairs_for_%s.csv", testStart)),
				UniverseSize:         universeSize,
				CorrelationThreshold: correlationThreshold,
				PValueThreshold:      pValueThreshold,
				TopPairs:             topPairs,
			})
			if err != nil {
				return fmt.Errorf("failed to screen window %s: %w", testStart, err)
			}
		}
		return nil
	},
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "simulate the strategy over every window",
	RunE: func(c *cobra.Command, args []string) error {
		deps, err := InitializeDependencies()
		if err != nil {
			return err
		}
		defer CloseDependencies(deps)

		return deps.SimulationHandler.RunAll(app.RunAllInput{
			WindowsPath:       windowsPath,
			TopPairsDir:       topPairsDir,
			OutputDir:         outputDir,
			StartingCash:      startingCash,
			DollarPerTrade:    dollarPerTrade,
			AllowNegativeCash: allowNegativeCash,
			EntryStdMultiple:  entryStdMultiple,
			StopStdMultiple:   stopStdMultiple,
		})
	},
}

var varCmd = &cobra.Command{
	Use:   "var",
	Short: "compute daily value at risk from a finished backtest",
	RunE: func(c *cobra.Command, args []string) error {
		deps, err := InitializeDependencies()
		if err != nil {
			return err
		}
		defer CloseDependencies(deps)

		return deps.ValueAtRiskHandler.ComputeValueAtRisk(calculator.ComputeValueAtRiskInput{
			WindowsPath:     windowsPath,
			TopPairsDir:     topPairsDir,
			AssetHistoryDir: filepath.Join(outputDir, "asset_history"),
			OutputPath:      filepath.Join(outputDir, "value_at_risk.csv"),
			Significance:    significance,
		})
	},
}

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "serve the backtest and screening endpoints",
	RunE: func(c *cobra.Command, args []string) error {
		deps, err := InitializeDependencies()
		if err != nil {
			return err
		}
		defer CloseDependencies(deps)

		return deps.ApiHandler.StartApi(apiPort)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&windowsPath, "windows", "windows.csv", "csv schedule of train/test windows")
	rootCmd.PersistentFlags().StringVar(&topPairsDir, "top-pairs-dir", "results/top_pairs", "directory holding per-window pair files")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "results", "directory for simulation outputs")

	backtestCmd.Flags().Float64Var(&startingCash, "starting-cash", 20, "cash per window")
	backtestCmd.Flags().Float64Var(&dollarPerTrade, "dollar-per-trade", 1, "gross dollars deployed per pair entry")
	backtestCmd.Flags().BoolVar(&allowNegativeCash, "allow-negative-cash", true, "permit margin (negative cash balances)")
	backtestCmd.Flags().Float64Var(&entryStdMultiple, "entry-std", 2, "entry band in spread standard deviations")
	backtestCmd.Flags().Float64Var(&stopStdMultiple, "stop-std", 4, "stop loss band in spread standard deviations")

	screenCmd.Flags().IntVar(&universeSize, "universe-size", 1000, "max securities kept after the liquidity screen")
	screenCmd.Flags().Float64Var(&correlationThreshold, "correlation", 0.95, "min log-price correlation for a candidate pair")
	screenCmd.Flags().Float64Var(&pValueThreshold, "p-value", 0.05, "max cointegration p-value")
	screenCmd.Flags().IntVar(&topPairs, "top-pairs", 20, "pairs kept per window")

	ingestCmd.Flags().StringVar(&ingestStart, "start", "2018-01-01", "first date to ingest")
	ingestCmd.Flags().StringVar(&ingestEnd, "end", time.Now().UTC().Format(time.DateOnly), "last date to ingest")

	varCmd.Flags().Float64Var(&significance, "significance", 0.05, "VaR tail probability")

	apiCmd.Flags().IntVar(&apiPort, "port", 3009, "port to listen on")

	rootCmd.AddCommand(ingestCmd, screenCmd, backtestCmd, varCmd, apiCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
