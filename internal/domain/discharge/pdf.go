package discharge

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/hms/hms/internal/platform/apperr"
)

// billRow is one printed line of the bill body.
type billRow struct {
	label string
	value string
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// billRows lays out the bill body from the stored record. Kept separate
// from the PDF writer so the content is testable without parsing PDF.
func billRows(d *DischargeDetail) []billRow {
	return []billRow{
		{"Patient Name", d.PatientName},
		{"Address", d.Address},
		{"Mobile", d.Mobile},
		{"Symptoms", d.Symptoms},
		{"Attending Doctor", d.DoctorName},
		{"Admit Date", d.AdmitDate.Format("2006-01-02")},
		{"Release Date", d.ReleaseDate.Format("2006-01-02")},
		{"Days Spent", fmt.Sprintf("%d", d.DaySpent)},
		{"Room Charge", money(d.RoomCharge)},
		{"Medicine Cost", money(d.MedicineCost)},
		{"Doctor Fee", money(d.DoctorFee)},
		{"Other Charges", money(d.OtherCharge)},
	}
}

// RenderBillPDF writes the discharge bill document to w.
func RenderBillPDF(d *DischargeDetail, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "HOSPITAL BILL", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range billRows(d) {
		pdf.CellFormat(60, 8, row.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, row.value, "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(60, 10, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 10, money(d.Total), "T", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return apperr.Internal("render bill pdf", err)
	}
	return nil
}
