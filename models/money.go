package models

import (
	"fmt"
)

// FormatKobo renders a kobo amount as a naira string, e.g. 3630 -> "₦36.30".
func FormatKobo(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s₦%d.%02d", sign, amount/100, amount%100)
}

// FormatMultiplier renders a multiplier in hundredths, e.g. 121 -> "1.21x".
func FormatMultiplier(m int64) string {
	return fmt.Sprintf("%d.%02dx", m/100, m%100)
}
