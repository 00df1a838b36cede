package billing

import (
	"math"
	"time"

	"github.com/hms/hms/internal/platform/apperr"
)

const (
	// TaxRate applies to every invoice subtotal.
	TaxRate = 0.10
	// AppointmentFee is the flat charge raised when an appointment is approved.
	AppointmentFee = 100.0
	// ConsultationFee is added when billing an approved appointment explicitly.
	ConsultationFee = 200.0

	secondsPerDay = 86400
)

// LineItem is one priced entry on an invoice.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// InvoiceTotals recomputes subtotal, tax and total from the full item list.
// Totals are never adjusted incrementally; callers pass every item each time.
func InvoiceTotals(items []LineItem) (subtotal, tax, total float64, err error) {
	for _, it := range items {
		if !validAmount(it.Amount) {
			return 0, 0, 0, apperr.Validation("invalid amount %v for %q", it.Amount, it.Description)
		}
		subtotal += it.Amount
	}
	subtotal = round2(subtotal)
	tax = round2(subtotal * TaxRate)
	total = round2(subtotal + tax)
	return subtotal, tax, total, nil
}

// DaysBetween counts billable stay days: any started day bills whole, and
// a same-day stay bills one day.
func DaysBetween(admit, release time.Time) (int, error) {
	if release.Before(admit) {
		return 0, apperr.Validation("release date precedes admit date")
	}
	secs := release.Sub(admit).Seconds()
	days := int(math.Ceil(secs / secondsPerDay))
	if days < 1 {
		days = 1
	}
	return days, nil
}

// DischargeTotals prices a hospital stay. The room charge is the daily rate
// times the billable days; the total folds in medicine, doctor fee and
// other charges.
func DischargeTotals(dailyRate float64, days int, medicine, doctorFee, other float64) (roomCharge, total float64, err error) {
	if days < 1 {
		return 0, 0, apperr.Validation("days must be at least 1")
	}
	for _, v := range []float64{dailyRate, medicine, doctorFee, other} {
		if !validAmount(v) {
			return 0, 0, apperr.Validation("invalid charge amount %v", v)
		}
	}
	roomCharge = round2(dailyRate * float64(days))
	total = round2(roomCharge + medicine + doctorFee + other)
	return roomCharge, total, nil
}
