package repository

import (
	"fmt"
	"os"

	"pairtrade/internal/domain"

	"github.com/gocarina/gocsv"
)

type WindowRepository interface {
	List(path string) ([]domain.Window, error)
}

type windowRepositoryHandler struct{}

func NewWindowRepository() WindowRepository {
	return windowRepositoryHandler{}
}

type windowRow struct {
	TrainStart Date `csv:"train_start"`
	TrainEnd   Date `csv:"train_end"`
	TestStart  Date `csv:"test_start"`
	TestEnd    Date `csv:"test_end"`
}

func (h windowRepositoryHandler) List(path string) ([]domain.Window, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open windows file: %w", err)
	}
	defer f.Close()

	rows := []windowRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse windows file %s: %w", path, err)
	}

	windows := make([]domain.Window, 0, len(rows))
	for _, row := range rows {
		windows = append(windows, domain.Window{
			TrainStart: row.TrainStart.Time,
			TrainEnd:   row.TrainEnd.Time,
			TestStart:  row.TestStart.Time,
			TestEnd:    row.TestEnd.Time,
		})
	}

	return windows, nil
}
