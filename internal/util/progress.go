package util

import "fmt"

// Progress tracks a running count against a known total, for job status
// logging on long batch runs.
type Progress struct {
	Done  int
	Total int
}

func (p Progress) Percentage() int {
	if p.Total <= 0 {
		return 0
	}
	if p.Done >= p.Total {
		return 100
	}
	return p.Done * 100 / p.Total
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d", p.Done, p.Total)
}
