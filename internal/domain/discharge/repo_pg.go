package discharge

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const dischargeCols = `id, patient_id, doctor_id, patient_name, doctor_name,
	address, mobile, symptoms, admit_date, release_date, day_spent,
	room_charge, medicine_cost, doctor_fee, other_charge, total, created_at`

func scanDischarge(row pgx.Row) (*DischargeDetail, error) {
	var d DischargeDetail
	err := row.Scan(&d.ID, &d.PatientID, &d.DoctorID, &d.PatientName, &d.DoctorName,
		&d.Address, &d.Mobile, &d.Symptoms, &d.AdmitDate, &d.ReleaseDate, &d.DaySpent,
		&d.RoomCharge, &d.MedicineCost, &d.DoctorFee, &d.OtherCharge, &d.Total, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("discharge record not found")
	}
	if err != nil {
		return nil, apperr.Internal("scan discharge", err)
	}
	return &d, nil
}

func (r *repoPG) Create(ctx context.Context, d *DischargeDetail) error {
	d.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO discharge_details (id, patient_id, doctor_id, patient_name,
			doctor_name, address, mobile, symptoms, admit_date, release_date,
			day_spent, room_charge, medicine_cost, doctor_fee, other_charge, total)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		d.ID, d.PatientID, d.DoctorID, d.PatientName, d.DoctorName,
		d.Address, d.Mobile, d.Symptoms, d.AdmitDate, d.ReleaseDate,
		d.DaySpent, d.RoomCharge, d.MedicineCost, d.DoctorFee, d.OtherCharge, d.Total)
	if err != nil {
		return apperr.Internal("insert discharge", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*DischargeDetail, error) {
	return scanDischarge(r.pool.QueryRow(ctx,
		`SELECT `+dischargeCols+` FROM discharge_details WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DischargeDetail, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM discharge_details WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("count discharges", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+dischargeCols+` FROM discharge_details
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("list discharges", err)
	}
	defer rows.Close()

	var out []*DischargeDetail
	for rows.Next() {
		d, err := scanDischarge(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("iterate discharges", err)
	}
	return out, total, nil
}
