package medicalrecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const recordCols = `id, patient_id, doctor_id, diagnosis, treatment,
	COALESCE(prescription, ''), COALESCE(notes, ''),
	COALESCE(blood_pressure, ''), COALESCE(heart_rate, ''),
	COALESCE(temperature, ''), COALESCE(weight, ''), COALESCE(height, ''),
	follow_up_date, created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.Diagnosis,
		&rec.Treatment, &rec.Prescription, &rec.Notes,
		&rec.Vitals.BloodPressure, &rec.Vitals.HeartRate, &rec.Vitals.Temperature,
		&rec.Vitals.Weight, &rec.Vitals.Height,
		&rec.FollowUpDate, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("medical record not found")
	}
	if err != nil {
		return nil, apperr.Internal("scan medical record", err)
	}
	return &rec, nil
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medical_records (id, patient_id, doctor_id, diagnosis,
			treatment, prescription, notes, blood_pressure, heart_rate,
			temperature, weight, height, follow_up_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		rec.ID, rec.PatientID, rec.DoctorID, rec.Diagnosis, rec.Treatment,
		rec.Prescription, rec.Notes, rec.Vitals.BloodPressure, rec.Vitals.HeartRate,
		rec.Vitals.Temperature, rec.Vitals.Weight, rec.Vitals.Height, rec.FollowUpDate)
	if err != nil {
		return apperr.Internal("insert medical record", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medical_records SET diagnosis=$2, treatment=$3, prescription=$4,
			notes=$5, blood_pressure=$6, heart_rate=$7, temperature=$8,
			weight=$9, height=$10, follow_up_date=$11, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Diagnosis, rec.Treatment, rec.Prescription, rec.Notes,
		rec.Vitals.BloodPressure, rec.Vitals.HeartRate, rec.Vitals.Temperature,
		rec.Vitals.Weight, rec.Vitals.Height, rec.FollowUpDate)
	if err != nil {
		return apperr.Internal("update medical record", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("medical record not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal("delete medical record", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("medical record not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Record, int, error) {
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
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM medical_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("count medical records", err)
	}

	args = append(args, limit, offset)
	q := `SELECT ` + recordCols + ` FROM medical_records` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, apperr.Internal("list medical records", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("iterate medical records", err)
	}
	return out, total, nil
}
