package repository

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// TopPairRow is one screened pair with its regression coefficients and
// spread dispersion. Threshold and stop-loss are derived from SpreadSd by
// the simulation driver, not stored here.
type TopPairRow struct {
	Permno1  int32   `csv:"permno1"`
	Permno2  int32   `csv:"permno2"`
	PValue   float64 `csv:"p_value"`
	Alpha    float64 `csv:"alpha"`
	Beta     float64 `csv:"beta"`
	SpreadSd float64 `csv:"spread_sd"`
}

type TopPairsRepository interface {
	Load(path string) ([]TopPairRow, error)
	Save(path string, rows []TopPairRow) error
}

type topPairsRepositoryHandler struct{}

func NewTopPairsRepository() TopPairsRepository {
	return topPairsRepositoryHandler{}
}

func (h topPairsRepositoryHandler) Load(path string) ([]TopPairRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open top pairs file: %w", err)
	}
	defer f.Close()

	rows := []TopPairRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse top pairs file %s: %w", path, err)
	}

	return rows, nil
}

func (h topPairsRepositoryHandler) Save(path string, rows []TopPairRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create top pairs file: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write top pairs file %s: %w", path, err)
	}

	return nil
}
