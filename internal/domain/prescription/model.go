package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Medication is one prescribed drug with its dosing instructions.
type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

type Prescription struct {
	ID                 uuid.UUID    `db:"id" json:"id"`
	PrescriptionNumber string       `db:"prescription_number" json:"prescription_number"`
	PatientID          uuid.UUID    `db:"patient_id" json:"patient_id"`
	DoctorID           uuid.UUID    `db:"doctor_id" json:"doctor_id"`
	AppointmentID      *uuid.UUID   `db:"appointment_id" json:"appointment_id"`
	Medications        []Medication `db:"medications" json:"medications"`
	Diagnosis          string       `db:"diagnosis" json:"diagnosis"`
	Symptoms           string       `db:"symptoms" json:"symptoms"`
	Notes              string       `db:"notes" json:"notes"`
	FollowUpDate       *time.Time   `db:"follow_up_date" json:"follow_up_date"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`
}
