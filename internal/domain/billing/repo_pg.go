package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const invoiceCols = `id, invoice_number, appointment_id, patient_id, doctor_id,
	items, additional_charges, appointment_fee, consultation_fee,
	subtotal, tax, total, status, payment_date, notes, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var items, extra []byte
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.AppointmentID, &inv.PatientID,
		&inv.DoctorID, &items, &extra, &inv.AppointmentFee, &inv.ConsultationFee,
		&inv.Subtotal, &inv.Tax, &inv.Total, &inv.Status, &inv.PaymentDate,
		&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("invoice not found")
	}
	if err != nil {
		return nil, apperr.Internal("scan invoice", err)
	}
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, apperr.Internal("decode invoice items", err)
	}
	if err := json.Unmarshal(extra, &inv.AdditionalCharges); err != nil {
		return nil, apperr.Internal("decode additional charges", err)
	}
	return &inv, nil
}

func marshalItems(inv *Invoice) (items, extra []byte, err error) {
	if inv.Items == nil {
		inv.Items = []LineItem{}
	}
	if inv.AdditionalCharges == nil {
		inv.AdditionalCharges = []LineItem{}
	}
	items, err = json.Marshal(inv.Items)
	if err != nil {
		return nil, nil, apperr.Internal("encode invoice items", err)
	}
	extra, err = json.Marshal(inv.AdditionalCharges)
	if err != nil {
		return nil, nil, apperr.Internal("encode additional charges", err)
	}
	return items, extra, nil
}

const insertInvoice = `
	INSERT INTO invoices (id, invoice_number, appointment_id, patient_id,
		doctor_id, items, additional_charges, appointment_fee,
		consultation_fee, subtotal, tax, total, status, payment_date, notes)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

func (r *repoPG) Create(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	items, extra, err := marshalItems(inv)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertInvoice,
		inv.ID, inv.InvoiceNumber, inv.AppointmentID, inv.PatientID, inv.DoctorID,
		items, extra, inv.AppointmentFee, inv.ConsultationFee,
		inv.Subtotal, inv.Tax, inv.Total, inv.Status, inv.PaymentDate, inv.Notes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("appointment already has an invoice")
	}
	if err != nil {
		return apperr.Internal("insert invoice", err)
	}
	return nil
}

func (r *repoPG) CreateIfAbsent(ctx context.Context, inv *Invoice) (bool, error) {
	inv.ID = uuid.New()
	items, extra, err := marshalItems(inv)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx,
		insertInvoice+` ON CONFLICT (appointment_id) DO NOTHING`,
		inv.ID, inv.InvoiceNumber, inv.AppointmentID, inv.PatientID, inv.DoctorID,
		items, extra, inv.AppointmentFee, inv.ConsultationFee,
		inv.Subtotal, inv.Tax, inv.Total, inv.Status, inv.PaymentDate, inv.Notes)
	if err != nil {
		return false, apperr.Internal("insert invoice", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx,
		`SELECT `+invoiceCols+` FROM invoices WHERE id = $1`, id))
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx,
		`SELECT `+invoiceCols+` FROM invoices WHERE appointment_id = $1`, appointmentID))
}

func (r *repoPG) Update(ctx context.Context, inv *Invoice) error {
	items, extra, err := marshalItems(inv)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices SET items=$2, additional_charges=$3, consultation_fee=$4,
			subtotal=$5, tax=$6, total=$7, status=$8, payment_date=$9,
			notes=$10, updated_at=NOW()
		WHERE id = $1`,
		inv.ID, items, extra, inv.ConsultationFee,
		inv.Subtotal, inv.Tax, inv.Total, inv.Status, inv.PaymentDate, inv.Notes)
	if err != nil {
		return apperr.Internal("update invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("invoice not found")
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	return r.list(ctx, ` WHERE patient_id = $1`, []any{patientID}, limit, offset)
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Invoice, int, error) {
	return r.list(ctx, ``, nil, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, args []any, limit, offset int) ([]*Invoice, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("count invoices", err)
	}

	args = append(args, limit, offset)
	q := `SELECT ` + invoiceCols + ` FROM invoices` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, apperr.Internal("list invoices", err)
	}
	defer rows.Close()

	var out []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("iterate invoices", err)
	}
	return out, total, nil
}

// NextInvoiceNumber derives the next INV number from the row count. The
// number column is unique, so a rare collision surfaces as Conflict on
// insert rather than a duplicate number.
func (r *repoPG) NextInvoiceNumber(ctx context.Context) (string, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&count); err != nil {
		return "", apperr.Internal("count invoices", err)
	}
	return fmt.Sprintf("INV-%06d", count+1), nil
}
