package domain

import "fmt"

// Money is an amount in the currency's minor unit (cents). All pricing
// arithmetic stays in integers so totals never accumulate float error.
type Money int64

func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s$%d.%02d", sign, m/100, m%100)
}
