package discharge

import (
	"time"

	"github.com/google/uuid"
)

// DischargeDetail is an immutable record of one completed stay. Patient and
// doctor display fields are snapshotted at discharge time so the bill stays
// stable through later profile edits. Re-admissions append new rows; the
// patient's current_discharge_id points at the latest one.
type DischargeDetail struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientName  string    `db:"patient_name" json:"patient_name"`
	DoctorName   string    `db:"doctor_name" json:"doctor_name"`
	Address      string    `db:"address" json:"address"`
	Mobile       string    `db:"mobile" json:"mobile"`
	Symptoms     string    `db:"symptoms" json:"symptoms"`
	AdmitDate    time.Time `db:"admit_date" json:"admit_date"`
	ReleaseDate  time.Time `db:"release_date" json:"release_date"`
	DaySpent     int       `db:"day_spent" json:"day_spent"`
	RoomCharge   float64   `db:"room_charge" json:"room_charge"`
	MedicineCost float64   `db:"medicine_cost" json:"medicine_cost"`
	DoctorFee    float64   `db:"doctor_fee" json:"doctor_fee"`
	OtherCharge  float64   `db:"other_charge" json:"other_charge"`
	Total        float64   `db:"total" json:"total"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
