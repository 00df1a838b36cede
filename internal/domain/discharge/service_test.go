package discharge

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type mockRepo struct {
	records map[uuid.UUID]*DischargeDetail
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*DischargeDetail)}
}

func (m *mockRepo) Create(ctx context.Context, d *DischargeDetail) error {
	d.ID = uuid.New()
	cp := *d
	m.records[d.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*DischargeDetail, error) {
	d, ok := m.records[id]
	if !ok {
		return nil, apperr.NotFound("discharge record not found")
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DischargeDetail, int, error) {
	var out []*DischargeDetail
	for _, d := range m.records {
		if d.PatientID == patientID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
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
	cp := *p
	return &cp, nil
}
func (m *mockPatientRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*patient.Patient, error) {
	for _, p := range m.patients {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
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
	p, ok := m.patients[patientID]
	if !ok {
		return apperr.NotFound("patient not found")
	}
	id := dischargeID
	p.CurrentDischargeID = &id
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
	svc      *Service
	repo     *mockRepo
	patients *mockPatientRepo
	patient  *patient.Patient
	doctor   *doctor.Doctor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMockRepo()
	patients := &mockPatientRepo{patients: make(map[uuid.UUID]*patient.Patient)}
	doctors := &mockDoctorRepo{doctors: make(map[uuid.UUID]*doctor.Doctor)}

	d := &doctor.Doctor{UserID: uuid.New(), FirstName: "Greg", LastName: "House"}
	if err := doctors.Create(context.Background(), d); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	p := &patient.Patient{
		UserID:           uuid.New(),
		FirstName:        "Ada",
		LastName:         "Lovelace",
		Address:          "12 Analytical St",
		Mobile:           "5551234567",
		Symptoms:         "fever",
		AssignedDoctorID: &d.ID,
		// Well inside the fifth day, so release at time.Now() still
		// rounds up to 5 regardless of how long the test takes.
		AdmitDate: time.Now().Add(-(4*24 + 23) * time.Hour),
	}
	if err := patients.Create(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	return &fixture{
		svc:      NewService(repo, patients, doctors),
		repo:     repo,
		patients: patients,
		patient:  p,
		doctor:   d,
	}
}

var adminActor = auth.Actor{UserID: uuid.New(), Role: auth.RoleAdmin}

func charges() ChargesInput {
	return ChargesInput{DailyRate: 50, MedicineCost: 20, DoctorFee: 100, OtherCharge: 10}
}

func TestDischarge(t *testing.T) {
	f := newFixture(t)

	detail, err := f.svc.Discharge(context.Background(), adminActor, f.patient.ID, charges())
	if err != nil {
		t.Fatalf("Discharge: %v", err)
	}

	// Five days at 50/day plus 20 medicine, 100 doctor fee, 10 other.
	if detail.DaySpent != 5 {
		t.Errorf("daySpent = %d, want 5", detail.DaySpent)
	}
	if detail.RoomCharge != 250 {
		t.Errorf("roomCharge = %v, want 250", detail.RoomCharge)
	}
	if detail.Total != 380 {
		t.Errorf("total = %v, want 380", detail.Total)
	}
	if detail.PatientName != "Ada Lovelace" || detail.DoctorName != "Greg House" {
		t.Errorf("snapshots: %q / %q", detail.PatientName, detail.DoctorName)
	}

	stored := f.patients.patients[f.patient.ID]
	if stored.CurrentDischargeID == nil || *stored.CurrentDischargeID != detail.ID {
		t.Error("current discharge pointer not set")
	}
	if !stored.AdmitDate.Equal(f.patient.AdmitDate) {
		t.Error("admit date must not change at discharge")
	}
}

func TestDischargeRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	actor := auth.Actor{UserID: f.doctor.UserID, Role: auth.RoleDoctor}

	_, err := f.svc.Discharge(context.Background(), actor, f.patient.ID, charges())
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("expected authorization error, got %v", err)
	}
	if len(f.repo.records) != 0 {
		t.Error("denied discharge must not persist")
	}
}

func TestDischargeUnknownPatient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Discharge(context.Background(), adminActor, uuid.New(), charges())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if len(f.repo.records) != 0 {
		t.Error("nothing should be persisted")
	}
}

func TestDischargeWithoutAssignedDoctor(t *testing.T) {
	f := newFixture(t)
	f.patients.patients[f.patient.ID].AssignedDoctorID = nil

	_, err := f.svc.Discharge(context.Background(), adminActor, f.patient.ID, charges())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if len(f.repo.records) != 0 {
		t.Error("nothing should be persisted")
	}
	if f.patients.patients[f.patient.ID].CurrentDischargeID != nil {
		t.Error("discharge pointer must stay nil")
	}
}

func TestDischargeSameDayBillsOneDay(t *testing.T) {
	f := newFixture(t)
	f.patients.patients[f.patient.ID].AdmitDate = time.Now().Add(-2 * time.Hour)

	detail, err := f.svc.Discharge(context.Background(), adminActor, f.patient.ID, charges())
	if err != nil {
		t.Fatalf("Discharge: %v", err)
	}
	if detail.DaySpent != 1 {
		t.Errorf("daySpent = %d, want 1", detail.DaySpent)
	}
	if detail.RoomCharge != 50 {
		t.Errorf("roomCharge = %v, want 50", detail.RoomCharge)
	}
}

func TestPreviewPersistsNothing(t *testing.T) {
	f := newFixture(t)

	detail, err := f.svc.Preview(context.Background(), adminActor, f.patient.ID, charges())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if detail.Total != 380 {
		t.Errorf("total = %v, want 380", detail.Total)
	}
	if len(f.repo.records) != 0 {
		t.Error("preview must not persist")
	}
	if f.patients.patients[f.patient.ID].CurrentDischargeID != nil {
		t.Error("preview must not set the discharge pointer")
	}
}

func TestCurrentBillAccess(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.CurrentBill(context.Background(), adminActor, f.patient.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found before discharge, got %v", err)
	}

	detail, err := f.svc.Discharge(context.Background(), adminActor, f.patient.ID, charges())
	if err != nil {
		t.Fatalf("Discharge: %v", err)
	}

	owner := auth.Actor{UserID: f.patient.UserID, Role: auth.RolePatient}
	got, err := f.svc.CurrentBill(context.Background(), owner, f.patient.ID)
	if err != nil {
		t.Fatalf("owner CurrentBill: %v", err)
	}
	if got.ID != detail.ID {
		t.Error("wrong bill returned")
	}

	stranger := &patient.Patient{UserID: uuid.New()}
	if err := f.patients.Create(context.Background(), stranger); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	strangerActor := auth.Actor{UserID: stranger.UserID, Role: auth.RolePatient}
	if _, err := f.svc.CurrentBill(context.Background(), strangerActor, f.patient.ID); !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("expected authorization error, got %v", err)
	}
}

func TestHistoryAccumulatesAcrossStays(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Discharge(context.Background(), adminActor, f.patient.ID, charges()); err != nil {
		t.Fatalf("first discharge: %v", err)
	}
	// Readmit and discharge again.
	p := f.patients.patients[f.patient.ID]
	p.AdmitDate = time.Now().Add(-24 * time.Hour)
	p.CurrentDischargeID = nil
	if _, err := f.svc.Discharge(context.Background(), adminActor, f.patient.ID, charges()); err != nil {
		t.Fatalf("second discharge: %v", err)
	}

	_, total, err := f.svc.History(context.Background(), adminActor, f.patient.ID, 20, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if total != 2 {
		t.Errorf("history total = %d, want 2", total)
	}
}
