package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxishealth/praxis/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, clinician_id, patient_id, appointment_date, appointment_time,
	type, duration, status, notes, created_at, updated_at`

func (r *repoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ClinicianID, &a.PatientID, &a.Date, &a.Time,
		&a.Type, &a.Duration, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, clinician_id, patient_id, appointment_date, appointment_time,
			type, duration, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.ClinicianID, a.PatientID, a.Date, a.Time,
		a.Type, a.Duration, a.Status, a.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, clinicianID string, id uuid.UUID) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1 AND clinician_id = $2`, id, clinicianID))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET patient_id=$3, appointment_date=$4, appointment_time=$5,
			type=$6, duration=$7, status=$8, notes=$9, updated_at=NOW()
		WHERE id = $1 AND clinician_id = $2`,
		a.ID, a.ClinicianID, a.PatientID, a.Date, a.Time,
		a.Type, a.Duration, a.Status, a.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, clinicianID string, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM appointment WHERE id = $1 AND clinician_id = $2`, id, clinicianID)
	return err
}

func filterClauses(f Filter, idx *int) (string, []interface{}) {
	clause := ""
	var args []interface{}
	add := func(cond string, val interface{}) {
		clause += fmt.Sprintf(` AND %s $%d`, cond, *idx)
		args = append(args, val)
		*idx++
	}
	if f.Date != "" {
		add(`appointment_date =`, f.Date)
	}
	if f.From != "" {
		add(`appointment_date >=`, f.From)
	}
	if f.To != "" {
		add(`appointment_date <=`, f.To)
	}
	if f.PatientID != "" {
		add(`patient_id =`, f.PatientID)
	}
	if f.Status != "" {
		add(`status =`, f.Status)
	}
	if f.Type != "" {
		add(`type =`, f.Type)
	}
	return clause, args
}

func (r *repoPG) List(ctx context.Context, clinicianID string, f Filter, limit, offset int) ([]*Appointment, int, error) {
	idx := 2
	clause, fargs := filterClauses(f, &idx)
	args := append([]interface{}{clinicianID}, fargs...)

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE clinician_id = $1`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + apptCols + ` FROM appointment WHERE clinician_id = $1` + clause +
		fmt.Sprintf(` ORDER BY appointment_date DESC, appointment_time DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

func (r *repoPG) ListAll(ctx context.Context, clinicianID string, f Filter) ([]*Appointment, error) {
	idx := 2
	clause, fargs := filterClauses(f, &idx)
	args := append([]interface{}{clinicianID}, fargs...)

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE clinician_id = $1`+clause+
			` ORDER BY appointment_date ASC, appointment_time ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE patient_id = $1
		 ORDER BY appointment_date DESC, appointment_time DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, nil
}
