package patient

import (
	"context"
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

const patientSelect = `
	SELECT p.id, p.user_id, u.first_name, u.last_name, u.email,
	       p.address, p.mobile, p.symptoms, p.assigned_doctor_id,
	       p.admit_date, p.approved, p.current_discharge_id, p.created_at
	FROM patients p
	JOIN users u ON u.id = p.user_id`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Email,
		&p.Address, &p.Mobile, &p.Symptoms, &p.AssignedDoctorID,
		&p.AdmitDate, &p.Approved, &p.CurrentDischargeID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient not found")
	}
	if err != nil {
		return nil, apperr.Internal("scan patient", err)
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, user_id, address, mobile, symptoms,
			assigned_doctor_id, admit_date, approved)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.UserID, p.Address, p.Mobile, p.Symptoms,
		p.AssignedDoctorID, p.AdmitDate, p.Approved)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("patient profile already exists for user")
	}
	if err != nil {
		return apperr.Internal("insert patient", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, patientSelect+` WHERE p.id = $1`, id))
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, patientSelect+` WHERE p.user_id = $1`, userID))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET address=$2, mobile=$3, symptoms=$4,
			assigned_doctor_id=$5, admit_date=$6, approved=$7,
			current_discharge_id=$8
		WHERE id = $1`,
		p.ID, p.Address, p.Mobile, p.Symptoms,
		p.AssignedDoctorID, p.AdmitDate, p.Approved, p.CurrentDischargeID)
	if err != nil {
		return apperr.Internal("update patient", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal("delete patient", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Approved != nil {
		args = append(args, *f.Approved)
		where += fmt.Sprintf(" AND p.approved = $%d", len(args))
	}
	if f.DoctorID != nil {
		args = append(args, *f.DoctorID)
		where += fmt.Sprintf(" AND p.assigned_doctor_id = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR p.symptoms ILIKE $%d)", n, n, n)
	}

	var total int
	countQ := `SELECT COUNT(*) FROM patients p JOIN users u ON u.id = p.user_id` + where
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("count patients", err)
	}

	args = append(args, limit, offset)
	q := patientSelect + where + fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, apperr.Internal("list patients", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("iterate patients", err)
	}
	return out, total, nil
}

func (r *repoPG) SetCurrentDischarge(ctx context.Context, patientID, dischargeID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET current_discharge_id = $2 WHERE id = $1`,
		patientID, dischargeID)
	if err != nil {
		return apperr.Internal("set current discharge", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient not found")
	}
	return nil
}
