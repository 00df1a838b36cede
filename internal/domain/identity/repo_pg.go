package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const userCols = `id, first_name, last_name, username, email, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email,
		&u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("scan user", err)
	}
	return &u, nil
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, first_name, last_name, username, email, password_hash, role)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.FirstName, u.LastName, u.Username, u.Email, u.PasswordHash, u.Role)
	if isUniqueViolation(err) {
		return apperr.Conflict("username or email already in use")
	}
	if err != nil {
		return apperr.Internal("insert user", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username))
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET first_name=$2, last_name=$3, username=$4, email=$5,
			password_hash=$6, role=$7, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.Username, u.Email, u.PasswordHash, u.Role)
	if isUniqueViolation(err) {
		return apperr.Conflict("username or email already in use")
	}
	if err != nil {
		return apperr.Internal("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("count users", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+userCols+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("list users", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("iterate users", err)
	}
	return users, total, nil
}

func (r *repoPG) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	var db AdminDashboard
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM doctors WHERE approved),
			(SELECT COUNT(*) FROM doctors WHERE NOT approved),
			(SELECT COUNT(*) FROM patients WHERE approved),
			(SELECT COUNT(*) FROM patients WHERE NOT approved),
			(SELECT COUNT(*) FROM appointments WHERE approved),
			(SELECT COUNT(*) FROM appointments WHERE NOT approved)`).
		Scan(&db.DoctorCount, &db.PendingDoctorCount,
			&db.PatientCount, &db.PendingPatientCount,
			&db.AppointmentCount, &db.PendingAppointmentCount)
	if err != nil {
		return nil, apperr.Internal("admin dashboard", err)
	}
	return &db, nil
}

// isUniqueViolation reports a Postgres 23505 unique constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
