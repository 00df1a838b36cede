package doctor

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

const doctorSelect = `
	SELECT d.id, d.user_id, u.first_name, u.last_name, u.email,
	       d.address, d.mobile, d.department, d.approved, d.created_at
	FROM doctors d
	JOIN users u ON u.id = d.user_id`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.FirstName, &d.LastName, &d.Email,
		&d.Address, &d.Mobile, &d.Department, &d.Approved, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("doctor not found")
	}
	if err != nil {
		return nil, apperr.Internal("scan doctor", err)
	}
	return &d, nil
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, user_id, address, mobile, department, approved)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID, d.UserID, d.Address, d.Mobile, d.Department, d.Approved)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("doctor profile already exists for user")
	}
	if err != nil {
		return apperr.Internal("insert doctor", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, doctorSelect+` WHERE d.id = $1`, id))
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, doctorSelect+` WHERE d.user_id = $1`, userID))
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctors SET address=$2, mobile=$3, department=$4, approved=$5
		WHERE id = $1`,
		d.ID, d.Address, d.Mobile, d.Department, d.Approved)
	if err != nil {
		return apperr.Internal("update doctor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("doctor not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal("delete doctor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("doctor not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Doctor, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Approved != nil {
		args = append(args, *f.Approved)
		where += fmt.Sprintf(" AND d.approved = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR d.department ILIKE $%d)", n, n, n)
	}

	var total int
	countQ := `SELECT COUNT(*) FROM doctors d JOIN users u ON u.id = d.user_id` + where
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("count doctors", err)
	}

	args = append(args, limit, offset)
	q := doctorSelect + where + fmt.Sprintf(" ORDER BY d.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, apperr.Internal("list doctors", err)
	}
	defer rows.Close()

	var out []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("iterate doctors", err)
	}
	return out, total, nil
}

func (r *repoPG) Dashboard(ctx context.Context, id uuid.UUID) (*Dashboard, error) {
	var db Dashboard
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients WHERE assigned_doctor_id = $1),
			(SELECT COUNT(*) FROM appointments WHERE doctor_id = $1),
			(SELECT COUNT(*) FROM appointments WHERE doctor_id = $1 AND NOT approved),
			(SELECT COUNT(*) FROM discharge_details WHERE doctor_id = $1)`,
		id).Scan(&db.AssignedPatients, &db.TotalAppointments, &db.PendingAppointments, &db.Discharges)
	if err != nil {
		return nil, apperr.Internal("doctor dashboard", err)
	}
	return &db, nil
}
