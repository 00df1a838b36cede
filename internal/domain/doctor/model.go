package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Departments a doctor profile may belong to.
var Departments = []string{
	"Cardiologist",
	"Dermatologists",
	"Emergency Medicine Specialists",
	"Allergists/Immunologists",
	"Anesthesiologists",
	"Colon and Rectal Surgeons",
}

func ValidDepartment(d string) bool {
	for _, dep := range Departments {
		if dep == d {
			return true
		}
	}
	return false
}

// Doctor is a profile row joined with its user for display. FirstName,
// LastName and Email come from the users table and are read-only here.
type Doctor struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Email      string    `db:"email" json:"email"`
	Address    string    `db:"address" json:"address"`
	Mobile     string    `db:"mobile" json:"mobile"`
	Department string    `db:"department" json:"department"`
	Approved   bool      `db:"approved" json:"approved"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}

// Dashboard aggregates a doctor's workload counts, resolved by doctor id.
type Dashboard struct {
	AssignedPatients    int `json:"assigned_patients"`
	TotalAppointments   int `json:"total_appointments"`
	PendingAppointments int `json:"pending_appointments"`
	Discharges          int `json:"discharges"`
}
