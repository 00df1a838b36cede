package billing

import (
	"math"
	"testing"
	"time"

	"github.com/hms/hms/internal/platform/apperr"
)

func TestInvoiceTotals(t *testing.T) {
	subtotal, tax, total, err := InvoiceTotals([]LineItem{
		{Description: "Appointment Fee", Amount: 100},
	})
	if err != nil {
		t.Fatalf("InvoiceTotals: %v", err)
	}
	if subtotal != 100 || tax != 10 || total != 110 {
		t.Errorf("got %v/%v/%v, want 100/10/110", subtotal, tax, total)
	}
}

func TestInvoiceTotalsRounding(t *testing.T) {
	subtotal, tax, total, err := InvoiceTotals([]LineItem{
		{Description: "a", Amount: 33.33},
		{Description: "b", Amount: 0.01},
	})
	if err != nil {
		t.Fatalf("InvoiceTotals: %v", err)
	}
	if subtotal != 33.34 {
		t.Errorf("subtotal = %v", subtotal)
	}
	if tax != 3.33 {
		t.Errorf("tax = %v, want 3.33", tax)
	}
	if total != 36.67 {
		t.Errorf("total = %v, want 36.67", total)
	}
}

func TestInvoiceTotalsEmpty(t *testing.T) {
	subtotal, tax, total, err := InvoiceTotals(nil)
	if err != nil {
		t.Fatalf("InvoiceTotals: %v", err)
	}
	if subtotal != 0 || tax != 0 || total != 0 {
		t.Errorf("got %v/%v/%v, want zeros", subtotal, tax, total)
	}
}

func TestInvoiceTotalsRejectsBadAmounts(t *testing.T) {
	for _, amount := range []float64{-1, math.Inf(1), math.NaN()} {
		_, _, _, err := InvoiceTotals([]LineItem{{Description: "x", Amount: amount}})
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("amount %v: expected validation error, got %v", amount, err)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	admit := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		release time.Time
		want    int
	}{
		{"same instant", admit, 1},
		{"same day", admit.Add(5 * time.Hour), 1},
		{"exactly one day", admit.Add(24 * time.Hour), 1},
		{"a minute over one day", admit.Add(24*time.Hour + time.Minute), 2},
		{"five days", admit.Add(5 * 24 * time.Hour), 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DaysBetween(admit, tc.release)
			if err != nil {
				t.Fatalf("DaysBetween: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDaysBetweenReleaseBeforeAdmit(t *testing.T) {
	admit := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := DaysBetween(admit, admit.Add(-time.Hour))
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDischargeTotals(t *testing.T) {
	// Five-day stay at 50/day with 20 medicine, 100 doctor fee, 10 other.
	roomCharge, total, err := DischargeTotals(50, 5, 20, 100, 10)
	if err != nil {
		t.Fatalf("DischargeTotals: %v", err)
	}
	if roomCharge != 250 {
		t.Errorf("roomCharge = %v, want 250", roomCharge)
	}
	if total != 380 {
		t.Errorf("total = %v, want 380", total)
	}
}

func TestDischargeTotalsValidation(t *testing.T) {
	if _, _, err := DischargeTotals(50, 0, 0, 0, 0); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for zero days, got %v", err)
	}
	if _, _, err := DischargeTotals(-50, 1, 0, 0, 0); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for negative rate, got %v", err)
	}
	if _, _, err := DischargeTotals(50, 1, math.NaN(), 0, 0); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for NaN medicine, got %v", err)
	}
}
