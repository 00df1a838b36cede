package medicalrecord

import (
	"time"

	"github.com/google/uuid"
)

// VitalSigns are free-form readings taken during the visit.
type VitalSigns struct {
	BloodPressure string `db:"blood_pressure" json:"blood_pressure"`
	HeartRate     string `db:"heart_rate" json:"heart_rate"`
	Temperature   string `db:"temperature" json:"temperature"`
	Weight        string `db:"weight" json:"weight"`
	Height        string `db:"height" json:"height"`
}

type Record struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Diagnosis    string     `db:"diagnosis" json:"diagnosis"`
	Treatment    string     `db:"treatment" json:"treatment"`
	Prescription string     `db:"prescription" json:"prescription"`
	Notes        string     `db:"notes" json:"notes"`
	Vitals       VitalSigns `json:"vital_signs"`
	FollowUpDate *time.Time `db:"follow_up_date" json:"follow_up_date"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
