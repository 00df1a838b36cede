package auth

import (
	"github.com/hms/hms/internal/platform/apperr"
)

// Operation names a guarded workflow entry point.
type Operation string

const (
	OpDischargePatient   Operation = "discharge.patient"
	OpViewDischargeBill  Operation = "discharge.view_bill"
	OpGenerateInvoice    Operation = "invoice.generate"
	OpAddInvoiceCharges  Operation = "invoice.add_charges"
	OpSetInvoiceStatus   Operation = "invoice.set_status"
	OpViewInvoices       Operation = "invoice.view"
	OpApproveAppointment Operation = "appointment.approve"
	OpCreateAppointment  Operation = "appointment.create"
	OpDeleteAppointment  Operation = "appointment.delete"
	OpManageUsers        Operation = "identity.manage"
	OpManageDoctors      Operation = "doctor.manage"
	OpManagePatients     Operation = "patient.manage"
	OpWriteClinical      Operation = "clinical.write"
	OpSendMessage        Operation = "message.send"
)

// policy is the single access table every workflow consults before touching
// the store. Per-entity ownership checks (a doctor restricted to its own
// patients' invoices, a patient to its own records) happen inside the
// services after this role gate passes.
var policy = map[Operation]map[Role]bool{
	OpDischargePatient:   {RoleAdmin: true},
	OpViewDischargeBill:  {RoleAdmin: true, RoleDoctor: true, RolePatient: true},
	OpGenerateInvoice:    {RoleAdmin: true, RoleDoctor: true},
	OpAddInvoiceCharges:  {RoleAdmin: true, RoleDoctor: true},
	OpSetInvoiceStatus:   {RoleAdmin: true},
	OpViewInvoices:       {RoleAdmin: true, RoleDoctor: true, RolePatient: true},
	OpApproveAppointment: {RoleAdmin: true},
	OpCreateAppointment:  {RoleAdmin: true, RoleDoctor: true, RolePatient: true},
	OpDeleteAppointment:  {RoleAdmin: true, RoleDoctor: true},
	OpManageUsers:        {RoleAdmin: true},
	OpManageDoctors:      {RoleAdmin: true},
	OpManagePatients:     {RoleAdmin: true},
	OpWriteClinical:      {RoleAdmin: true, RoleDoctor: true},
	OpSendMessage:        {RoleAdmin: true, RoleDoctor: true, RolePatient: true},
}

// Allowed reports whether the role may perform the operation.
func Allowed(role Role, op Operation) bool {
	return policy[op][role]
}

// Require returns an authorization error unless the actor's role may perform
// the operation. Services call this before any store access so a denial
// makes zero mutations.
func Require(actor Actor, op Operation) error {
	if Allowed(actor.Role, op) {
		return nil
	}
	return apperr.Authorization("role %q is not permitted to perform %s", actor.Role, op)
}
