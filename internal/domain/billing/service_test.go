package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type mockRepo struct {
	invoices map[uuid.UUID]*Invoice
	byAppt   map[uuid.UUID]uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		invoices: make(map[uuid.UUID]*Invoice),
		byAppt:   make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockRepo) Create(ctx context.Context, inv *Invoice) error {
	if _, exists := m.byAppt[inv.AppointmentID]; exists {
		return apperr.Conflict("appointment already has an invoice")
	}
	inv.ID = uuid.New()
	cp := *inv
	m.invoices[inv.ID] = &cp
	m.byAppt[inv.AppointmentID] = inv.ID
	return nil
}

func (m *mockRepo) CreateIfAbsent(ctx context.Context, inv *Invoice) (bool, error) {
	if _, exists := m.byAppt[inv.AppointmentID]; exists {
		return false, nil
	}
	return true, m.Create(ctx, inv)
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, apperr.NotFound("invoice not found")
	}
	cp := *inv
	return &cp, nil
}

func (m *mockRepo) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Invoice, error) {
	id, ok := m.byAppt[appointmentID]
	if !ok {
		return nil, apperr.NotFound("invoice not found")
	}
	return m.GetByID(ctx, id)
}

func (m *mockRepo) Update(ctx context.Context, inv *Invoice) error {
	if _, ok := m.invoices[inv.ID]; !ok {
		return apperr.NotFound("invoice not found")
	}
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	var out []*Invoice
	for _, inv := range m.invoices {
		if inv.PatientID == patientID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Invoice, int, error) {
	var out []*Invoice
	for _, inv := range m.invoices {
		cp := *inv
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) NextInvoiceNumber(ctx context.Context) (string, error) {
	return fmt.Sprintf("INV-%06d", len(m.invoices)+1), nil
}

type mockApptRepo struct {
	appts map[uuid.UUID]*appointment.Appointment
}

func (m *mockApptRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	a.ID = uuid.New()
	m.appts[a.ID] = a
	return nil
}
func (m *mockApptRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	return a, nil
}
func (m *mockApptRepo) Update(ctx context.Context, a *appointment.Appointment) error { return nil }
func (m *mockApptRepo) Delete(ctx context.Context, id uuid.UUID) error               { return nil }
func (m *mockApptRepo) List(ctx context.Context, f appointment.ListFilter, limit, offset int) ([]*appointment.Appointment, int, error) {
	return nil, 0, nil
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

type fixture struct {
	svc     *Service
	repo    *mockRepo
	appt    *appointment.Appointment
	patient *patient.Patient
	doctor  *doctor.Doctor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMockRepo()
	appts := &mockApptRepo{appts: make(map[uuid.UUID]*appointment.Appointment)}
	doctors := &mockDoctorRepo{doctors: make(map[uuid.UUID]*doctor.Doctor)}
	patients := &mockPatientRepo{patients: make(map[uuid.UUID]*patient.Patient)}

	p := &patient.Patient{UserID: uuid.New()}
	if err := patients.Create(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	d := &doctor.Doctor{UserID: uuid.New()}
	if err := doctors.Create(context.Background(), d); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	a := &appointment.Appointment{PatientID: p.ID, DoctorID: d.ID, Description: "checkup"}
	if err := appts.Create(context.Background(), a); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	return &fixture{
		svc:     NewService(repo, appts, doctors, patients),
		repo:    repo,
		appt:    a,
		patient: p,
		doctor:  d,
	}
}

var adminActor = auth.Actor{UserID: uuid.New(), Role: auth.RoleAdmin}

func TestAutoCreateOnApproval(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.AutoCreateOnApproval(context.Background(), f.appt); err != nil {
		t.Fatalf("AutoCreateOnApproval: %v", err)
	}

	inv, err := f.repo.GetByAppointment(context.Background(), f.appt.ID)
	if err != nil {
		t.Fatalf("GetByAppointment: %v", err)
	}
	if len(inv.Items) != 1 || inv.Items[0].Description != "Appointment Fee" || inv.Items[0].Amount != 100 {
		t.Errorf("unexpected items: %+v", inv.Items)
	}
	if inv.Subtotal != 100 || inv.Tax != 10 || inv.Total != 110 {
		t.Errorf("totals = %v/%v/%v, want 100/10/110", inv.Subtotal, inv.Tax, inv.Total)
	}
	if inv.InvoiceNumber != "INV-000001" {
		t.Errorf("invoice number = %q", inv.InvoiceNumber)
	}
	if inv.Status != StatusPending {
		t.Errorf("status = %q, want pending", inv.Status)
	}
}

func TestAutoCreateOnApprovalIdempotent(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		if err := f.svc.AutoCreateOnApproval(context.Background(), f.appt); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if len(f.repo.invoices) != 1 {
		t.Errorf("invoice count = %d, want 1", len(f.repo.invoices))
	}
}

func TestGenerateForAppointment(t *testing.T) {
	f := newFixture(t)
	f.appt.Approved = true

	inv, err := f.svc.GenerateForAppointment(context.Background(), adminActor, f.appt.ID, GenerateInput{
		AdditionalCharges: []LineItem{{Description: "Blood Test", Amount: 45}},
	})
	if err != nil {
		t.Fatalf("GenerateForAppointment: %v", err)
	}
	if inv.ConsultationFee != 200 {
		t.Errorf("consultation fee = %v, want 200 for approved appointment", inv.ConsultationFee)
	}
	if inv.Subtotal != 345 || inv.Tax != 34.5 || inv.Total != 379.5 {
		t.Errorf("totals = %v/%v/%v, want 345/34.5/379.5", inv.Subtotal, inv.Tax, inv.Total)
	}

	// A second explicit generate is a conflict, not a silent skip.
	_, err = f.svc.GenerateForAppointment(context.Background(), adminActor, f.appt.ID, GenerateInput{})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestGenerateUnapprovedSkipsConsultation(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.GenerateForAppointment(context.Background(), adminActor, f.appt.ID, GenerateInput{})
	if err != nil {
		t.Fatalf("GenerateForAppointment: %v", err)
	}
	if inv.ConsultationFee != 0 {
		t.Errorf("consultation fee = %v, want 0 for unapproved appointment", inv.ConsultationFee)
	}
	if inv.Subtotal != 100 || inv.Total != 110 {
		t.Errorf("totals = %v/%v", inv.Subtotal, inv.Total)
	}
}

func TestGenerateDoctorOwnershipOnly(t *testing.T) {
	f := newFixture(t)

	otherDoc := &doctor.Doctor{UserID: uuid.New()}
	docs := f.svc.doctors.(*mockDoctorRepo)
	if err := docs.Create(context.Background(), otherDoc); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}

	actor := auth.Actor{UserID: otherDoc.UserID, Role: auth.RoleDoctor}
	_, err := f.svc.GenerateForAppointment(context.Background(), actor, f.appt.ID, GenerateInput{})
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("expected authorization error, got %v", err)
	}
}

func TestAddCharges(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.AutoCreateOnApproval(context.Background(), f.appt); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	seed, err := f.repo.GetByAppointment(context.Background(), f.appt.ID)
	if err != nil {
		t.Fatalf("GetByAppointment: %v", err)
	}

	inv, err := f.svc.AddCharges(context.Background(), adminActor, seed.ID, []LineItem{
		{Description: "X-ray", Amount: 50},
	})
	if err != nil {
		t.Fatalf("AddCharges: %v", err)
	}
	if inv.Subtotal != 150 || inv.Tax != 15 || inv.Total != 165 {
		t.Errorf("totals = %v/%v/%v, want 150/15/165", inv.Subtotal, inv.Tax, inv.Total)
	}
	if len(inv.Items) != 2 || len(inv.AdditionalCharges) != 1 {
		t.Errorf("items=%d extra=%d", len(inv.Items), len(inv.AdditionalCharges))
	}
}

func TestAddChargesDoctorOwnershipOnly(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.AutoCreateOnApproval(context.Background(), f.appt); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	seed, err := f.repo.GetByAppointment(context.Background(), f.appt.ID)
	if err != nil {
		t.Fatalf("GetByAppointment: %v", err)
	}

	otherDoc := &doctor.Doctor{UserID: uuid.New()}
	docs := f.svc.doctors.(*mockDoctorRepo)
	if err := docs.Create(context.Background(), otherDoc); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	actor := auth.Actor{UserID: otherDoc.UserID, Role: auth.RoleDoctor}
	_, err = f.svc.AddCharges(context.Background(), actor, seed.ID, []LineItem{{Description: "X-ray", Amount: 50}})
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("expected authorization error, got %v", err)
	}

	owner := auth.Actor{UserID: f.doctor.UserID, Role: auth.RoleDoctor}
	if _, err := f.svc.AddCharges(context.Background(), owner, seed.ID, []LineItem{{Description: "X-ray", Amount: 50}}); err != nil {
		t.Errorf("owning doctor should add charges: %v", err)
	}
}

func TestAddChargesValidation(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.AutoCreateOnApproval(context.Background(), f.appt); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	seed, _ := f.repo.GetByAppointment(context.Background(), f.appt.ID)

	if _, err := f.svc.AddCharges(context.Background(), adminActor, seed.ID, nil); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for empty charges, got %v", err)
	}
	if _, err := f.svc.AddCharges(context.Background(), adminActor, seed.ID, []LineItem{{Amount: 5}}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for blank description, got %v", err)
	}
	if _, err := f.svc.AddCharges(context.Background(), adminActor, seed.ID, []LineItem{{Description: "x", Amount: -5}}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for negative amount, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.AutoCreateOnApproval(context.Background(), f.appt); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	seed, _ := f.repo.GetByAppointment(context.Background(), f.appt.ID)

	if _, err := f.svc.SetStatus(context.Background(), adminActor, seed.ID, SetStatusInput{Status: StatusPaid}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("paid without payment date should fail, got %v", err)
	}
	if _, err := f.svc.SetStatus(context.Background(), adminActor, seed.ID, SetStatusInput{Status: "void"}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("unknown status should fail, got %v", err)
	}

	paidAt := time.Now()
	inv, err := f.svc.SetStatus(context.Background(), adminActor, seed.ID, SetStatusInput{Status: StatusPaid, PaymentDate: &paidAt})
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if inv.Status != StatusPaid || inv.PaymentDate == nil {
		t.Errorf("status=%q paymentDate=%v", inv.Status, inv.PaymentDate)
	}

	// Repeating the paid transition changes nothing.
	again, err := f.svc.SetStatus(context.Background(), adminActor, seed.ID, SetStatusInput{Status: StatusPaid, PaymentDate: &paidAt})
	if err != nil {
		t.Fatalf("repeat SetStatus: %v", err)
	}
	if !again.PaymentDate.Equal(*inv.PaymentDate) {
		t.Error("payment date moved on repeated transition")
	}
}

func TestPatientScopedReads(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.AutoCreateOnApproval(context.Background(), f.appt); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	seed, _ := f.repo.GetByAppointment(context.Background(), f.appt.ID)

	owner := auth.Actor{UserID: f.patient.UserID, Role: auth.RolePatient}
	if _, err := f.svc.Get(context.Background(), owner, seed.ID); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, _, err := f.svc.ListByPatient(context.Background(), owner, f.patient.ID, 20, 0); err != nil {
		t.Errorf("owner list: %v", err)
	}

	pats := f.svc.patients.(*mockPatientRepo)
	other := &patient.Patient{UserID: uuid.New()}
	if err := pats.Create(context.Background(), other); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	stranger := auth.Actor{UserID: other.UserID, Role: auth.RolePatient}
	if _, err := f.svc.Get(context.Background(), stranger, seed.ID); !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("expected authorization error on stranger read, got %v", err)
	}
	if _, _, err := f.svc.ListByPatient(context.Background(), stranger, f.patient.ID, 20, 0); !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("expected authorization error on stranger list, got %v", err)
	}
}
