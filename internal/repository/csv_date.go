package repository

import "time"

// Date marshals as YYYY-MM-DD in the CSV interchange files.
type Date struct {
	time.Time
}

func (d Date) MarshalCSV() (string, error) {
	return d.Time.Format(time.DateOnly), nil
}

func (d *Date) UnmarshalCSV(csv string) error {
	t, err := time.Parse(time.DateOnly, csv)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
