package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient joins the profile row with its user for display. The assigned
// doctor and current discharge are id references; current_discharge_id
// points at the latest discharge row and is nil while admitted.
type Patient struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	UserID             uuid.UUID  `db:"user_id" json:"user_id"`
	FirstName          string     `db:"first_name" json:"first_name"`
	LastName           string     `db:"last_name" json:"last_name"`
	Email              string     `db:"email" json:"email"`
	Address            string     `db:"address" json:"address"`
	Mobile             string     `db:"mobile" json:"mobile"`
	Symptoms           string     `db:"symptoms" json:"symptoms"`
	AssignedDoctorID   *uuid.UUID `db:"assigned_doctor_id" json:"assigned_doctor_id"`
	AdmitDate          time.Time  `db:"admit_date" json:"admit_date"`
	Approved           bool       `db:"approved" json:"approved"`
	CurrentDischargeID *uuid.UUID `db:"current_discharge_id" json:"current_discharge_id"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Discharged reports whether the patient currently has a discharge on file.
func (p *Patient) Discharged() bool {
	return p.CurrentDischargeID != nil
}
