package prescription

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type mockRepo struct {
	rx map[uuid.UUID]*Prescription
}

func (m *mockRepo) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	cp := *p
	m.rx[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.rx[id]
	if !ok {
		return nil, apperr.NotFound("prescription not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(ctx context.Context, p *Prescription) error {
	if _, ok := m.rx[p.ID]; !ok {
		return apperr.NotFound("prescription not found")
	}
	cp := *p
	m.rx[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.rx[id]; !ok {
		return apperr.NotFound("prescription not found")
	}
	delete(m.rx, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Prescription, int, error) {
	var out []*Prescription
	for _, p := range m.rx {
		if f.PatientID != nil && p.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && p.DoctorID != *f.DoctorID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) NextNumber(ctx context.Context) (string, error) {
	return fmt.Sprintf("RX-%06d", len(m.rx)+1), nil
}

type mockPatientRepo struct {
	patients map[uuid.UUID]*patient.Patient
}

func (m *mockPatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}
func (m *mockPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient not found")
	}
	return p, nil
}
func (m *mockPatientRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*patient.Patient, error) {
	for _, p := range m.patients {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, apperr.NotFound("patient not found")
}
func (m *mockPatientRepo) Update(ctx context.Context, p *patient.Patient) error { return nil }
func (m *mockPatientRepo) Delete(ctx context.Context, id uuid.UUID) error       { return nil }
func (m *mockPatientRepo) List(ctx context.Context, f patient.ListFilter, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}
func (m *mockPatientRepo) SetCurrentDischarge(ctx context.Context, patientID, dischargeID uuid.UUID) error {
	return nil
}

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*doctor.Doctor
}

func (m *mockDoctorRepo) Create(ctx context.Context, d *doctor.Doctor) error {
	d.ID = uuid.New()
	m.doctors[d.ID] = d
	return nil
}
func (m *mockDoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, apperr.NotFound("doctor not found")
	}
	return d, nil
}
func (m *mockDoctorRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*doctor.Doctor, error) {
	for _, d := range m.doctors {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, apperr.NotFound("doctor not found")
}
func (m *mockDoctorRepo) Update(ctx context.Context, d *doctor.Doctor) error { return nil }
func (m *mockDoctorRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (m *mockDoctorRepo) List(ctx context.Context, f doctor.ListFilter, limit, offset int) ([]*doctor.Doctor, int, error) {
	return nil, 0, nil
}
func (m *mockDoctorRepo) Dashboard(ctx context.Context, id uuid.UUID) (*doctor.Dashboard, error) {
	return &doctor.Dashboard{}, nil
}

type fixture struct {
	svc     *Service
	patient *patient.Patient
	doctor  *doctor.Doctor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := &mockRepo{rx: make(map[uuid.UUID]*Prescription)}
	patients := &mockPatientRepo{patients: make(map[uuid.UUID]*patient.Patient)}
	doctors := &mockDoctorRepo{doctors: make(map[uuid.UUID]*doctor.Doctor)}

	p := &patient.Patient{UserID: uuid.New()}
	if err := patients.Create(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	d := &doctor.Doctor{UserID: uuid.New()}
	if err := doctors.Create(context.Background(), d); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	return &fixture{svc: NewService(repo, patients, doctors), patient: p, doctor: d}
}

func meds() []Medication {
	return []Medication{{Name: "Amoxicillin", Dosage: "500mg", Frequency: "3x daily", Duration: "7 days"}}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	docActor := auth.Actor{UserID: f.doctor.UserID, Role: auth.RoleDoctor}

	p, err := f.svc.Create(context.Background(), docActor, CreateInput{
		PatientID:   f.patient.ID,
		Medications: meds(),
		Diagnosis:   "bacterial infection",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.PrescriptionNumber != "RX-000001" {
		t.Errorf("number = %q, want RX-000001", p.PrescriptionNumber)
	}
	if p.DoctorID != f.doctor.ID {
		t.Error("not attributed to acting doctor")
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	docActor := auth.Actor{UserID: f.doctor.UserID, Role: auth.RoleDoctor}

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing diagnosis", CreateInput{PatientID: f.patient.ID, Medications: meds()}},
		{"no medications", CreateInput{PatientID: f.patient.ID, Diagnosis: "x"}},
		{"medication without dosage", CreateInput{
			PatientID: f.patient.ID, Diagnosis: "x",
			Medications: []Medication{{Name: "Aspirin"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(context.Background(), docActor, tc.in); !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestScopedReads(t *testing.T) {
	f := newFixture(t)
	docActor := auth.Actor{UserID: f.doctor.UserID, Role: auth.RoleDoctor}

	p, err := f.svc.Create(context.Background(), docActor, CreateInput{
		PatientID:   f.patient.ID,
		Medications: meds(),
		Diagnosis:   "bacterial infection",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	patActor := auth.Actor{UserID: f.patient.UserID, Role: auth.RolePatient}
	if _, err := f.svc.Get(context.Background(), patActor, p.ID); err != nil {
		t.Errorf("patient read own: %v", err)
	}

	_, total, err := f.svc.List(context.Background(), patActor, ListFilter{}, 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}
