package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

// User maps to the users table. Every doctor and patient profile hangs off
// a user row; deleting the user cascades to its profile.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         auth.Role `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the display name snapshotted onto appointments and bills.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// AdminDashboard carries the approval-queue counts shown on the admin
// landing page.
type AdminDashboard struct {
	DoctorCount             int `json:"doctor_count"`
	PendingDoctorCount      int `json:"pending_doctor_count"`
	PatientCount            int `json:"patient_count"`
	PendingPatientCount     int `json:"pending_patient_count"`
	AppointmentCount        int `json:"appointment_count"`
	PendingAppointmentCount int `json:"pending_appointment_count"`
}
