package prescription

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

const rxCols = `id, prescription_number, patient_id, doctor_id, appointment_id,
	medications, diagnosis, COALESCE(symptoms, ''), COALESCE(notes, ''),
	follow_up_date, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	var meds []byte
	err := row.Scan(&p.ID, &p.PrescriptionNumber, &p.PatientID, &p.DoctorID,
		&p.AppointmentID, &meds, &p.Diagnosis, &p.Symptoms, &p.Notes,
		&p.FollowUpDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("prescription not found")
	}
	if err != nil {
		return nil, apperr.Internal("scan prescription", err)
	}
	if err := json.Unmarshal(meds, &p.Medications); err != nil {
		return nil, apperr.Internal("decode medications", err)
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	if p.Medications == nil {
		p.Medications = []Medication{}
	}
	meds, err := json.Marshal(p.Medications)
	if err != nil {
		return apperr.Internal("encode medications", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO prescriptions (id, prescription_number, patient_id,
			doctor_id, appointment_id, medications, diagnosis, symptoms,
			notes, follow_up_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.PrescriptionNumber, p.PatientID, p.DoctorID, p.AppointmentID,
		meds, p.Diagnosis, p.Symptoms, p.Notes, p.FollowUpDate)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("prescription number already in use")
	}
	if err != nil {
		return apperr.Internal("insert prescription", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return scanPrescription(r.pool.QueryRow(ctx,
		`SELECT `+rxCols+` FROM prescriptions WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Prescription) error {
	meds, err := json.Marshal(p.Medications)
	if err != nil {
		return apperr.Internal("encode medications", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE prescriptions SET medications=$2, diagnosis=$3, symptoms=$4,
			notes=$5, follow_up_date=$6, updated_at=NOW()
		WHERE id = $1`,
		p.ID, meds, p.Diagnosis, p.Symptoms, p.Notes, p.FollowUpDate)
	if err != nil {
		return apperr.Internal("update prescription", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("prescription not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal("delete prescription", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("prescription not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Prescription, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if f.DoctorID != nil {
		args = append(args, *f.DoctorID)
		where += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("count prescriptions", err)
	}

	args = append(args, limit, offset)
	q := `SELECT ` + rxCols + ` FROM prescriptions` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, apperr.Internal("list prescriptions", err)
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("iterate prescriptions", err)
	}
	return out, total, nil
}

func (r *repoPG) NextNumber(ctx context.Context) (string, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions`).Scan(&count); err != nil {
		return "", apperr.Internal("count prescriptions", err)
	}
	return fmt.Sprintf("RX-%06d", count+1), nil
}
