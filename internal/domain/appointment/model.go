package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment snapshots the patient and doctor display names at creation
// so listings survive later profile edits. Linkage is by id.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientName     string    `db:"patient_name" json:"patient_name"`
	DoctorName      string    `db:"doctor_name" json:"doctor_name"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	Description     string    `db:"description" json:"description"`
	Approved        bool      `db:"approved" json:"approved"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
