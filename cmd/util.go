package cmd

import (
	"database/sql"
	"fmt"
	"log"

	"pairtrade/api"
	"pairtrade/internal"
	"pairtrade/internal/app"
	"pairtrade/internal/calculator"
	"pairtrade/internal/data"
	"pairtrade/internal/logger"
	"pairtrade/internal/repository"
	"pairtrade/internal/screener"

	_ "github.com/lib/pq"
)

type Dependencies struct {
	Db *sql.DB

	SecurityRepository      repository.SecurityRepository
	SecurityPriceRepository repository.SecurityPriceRepository
	PriceService            data.PriceService

	SimulationHandler  app.SimulationHandler
	ScreenerHandler    screener.Handler
	ValueAtRiskHandler calculator.ValueAtRiskHandler
	ApiHandler         api.ApiHandler
}

func CloseDependencies(deps *Dependencies) {
	err := deps.Db.Close()
	if err != nil {
		log.Fatalf("failed to close db: %v", err)
	}
}

func InitializeDependencies() (*Dependencies, error) {
	secrets, err := internal.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	dbConn, err := sql.Open("postgres", secrets.Db.ToConnectionStr())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	zl := logger.New()

	securityRepository := repository.NewSecurityRepository(dbConn)
	securityPriceRepository := repository.NewSecurityPriceRepository(dbConn)
	topPairsRepository := repository.NewTopPairsRepository()
	windowRepository := repository.NewWindowRepository()
	outputRepository := repository.NewSimulationOutputRepository()

	priceService := data.NewPriceService(securityPriceRepository)

	simulationHandler := app.SimulationHandler{
		PriceService:       priceService,
		TopPairsRepository: topPairsRepository,
		WindowRepository:   windowRepository,
		OutputRepository:   outputRepository,
		Logger:             zl,
	}
	screenerHandler := screener.Handler{
		SecurityRepository: securityRepository,
		PriceService:       priceService,
		TopPairsRepository: topPairsRepository,
		Logger:             zl,
	}
	valueAtRiskHandler := calculator.ValueAtRiskHandler{
		PriceService:       priceService,
		TopPairsRepository: topPairsRepository,
		WindowRepository:   windowRepository,
		OutputRepository:   outputRepository,
		Logger:             zl,
	}

	return &Dependencies{
		Db:                      dbConn,
		SecurityRepository:      securityRepository,
		SecurityPriceRepository: securityPriceRepository,
		PriceService:            priceService,
		SimulationHandler:       simulationHandler,
		ScreenerHandler:         screenerHandler,
		ValueAtRiskHandler:      valueAtRiskHandler,
		ApiHandler: api.ApiHandler{
			SimulationHandler: simulationHandler,
			ScreenerHandler:   screenerHandler,
			Logger:            zl,
		},
	}, nil
}
