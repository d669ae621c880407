package domain

import "time"

// SecurityPrice is one daily bar for one security.
type SecurityPrice struct {
	Permno    int32
	Date      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	MarketCap float64
}

// Security is one row of the securities master.
type Security struct {
	Permno    int32
	Ticker    string
	Name      string
	BeginDate time.Time
	EndDate   time.Time
}

// Window is one train/test split of the backtest schedule.
type Window struct {
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}
