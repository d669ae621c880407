package repository

import "fmt"

// NotFoundError reports a security with no backing data at all. An empty
// date range on a known security is not an error.
type NotFoundError struct {
	Permno int32
	Ticker string
}

func (e *NotFoundError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("ticker %s not found", e.Ticker)
	}
	return fmt.Sprintf("security %d does not exist", e.Permno)
}
