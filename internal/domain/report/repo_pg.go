package report

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

const reportCols = `id, clinician_id, patient_id, type, status, title, job_name,
	transcript_text, analysis_summary, created_at, updated_at`

func (r *repoPG) scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	err := row.Scan(&rep.ID, &rep.ClinicianID, &rep.PatientID, &rep.Type, &rep.Status,
		&rep.Title, &rep.JobName, &rep.TranscriptText, &rep.AnalysisSummary,
		&rep.CreatedAt, &rep.UpdatedAt)
	return &rep, err
}

func (r *repoPG) Create(ctx context.Context, rep *Report) error {
	rep.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO report (id, clinician_id, patient_id, type, status, title, job_name,
			transcript_text, analysis_summary)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rep.ID, rep.ClinicianID, rep.PatientID, rep.Type, rep.Status, rep.Title, rep.JobName,
		rep.TranscriptText, rep.AnalysisSummary)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, clinicianID string, id uuid.UUID) (*Report, error) {
	return r.scanReport(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reportCols+` FROM report WHERE id = $1 AND clinician_id = $2`, id, clinicianID))
}

func (r *repoPG) Update(ctx context.Context, rep *Report) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE report SET patient_id=$3, status=$4, title=$5,
			transcript_text=$6, analysis_summary=$7, updated_at=NOW()
		WHERE id = $1 AND clinician_id = $2`,
		rep.ID, rep.ClinicianID, rep.PatientID, rep.Status, rep.Title,
		rep.TranscriptText, rep.AnalysisSummary)
	return err
}

func (r *repoPG) Delete(ctx context.Context, clinicianID string, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM report WHERE id = $1 AND clinician_id = $2`, id, clinicianID)
	return err
}

func (r *repoPG) List(ctx context.Context, clinicianID string, f Filter, limit, offset int) ([]*Report, int, error) {
	where := ` WHERE clinician_id = $1`
	args := []interface{}{clinicianID}
	idx := 2
	add := func(cond string, val interface{}) {
		where += fmt.Sprintf(` AND %s = $%d`, cond, idx)
		args = append(args, val)
		idx++
	}
	if f.Type != "" {
		add("type", f.Type)
	}
	if f.Status != "" {
		add("status", f.Status)
	}
	if f.PatientID != "" {
		add("patient_id", f.PatientID)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM report`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + reportCols + ` FROM report` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Report
	for rows.Next() {
		rep, err := r.scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rep)
	}
	return items, total, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Report, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reportCols+` FROM report WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Report
	for rows.Next() {
		rep, err := r.scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rep)
	}
	return items, nil
}

func (r *repoPG) CountPending(ctx context.Context, clinicianID string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM report
		WHERE clinician_id = $1 AND status IN ($2, $3, $4)`,
		clinicianID, StatusPendingUpload, StatusProcessing, StatusDraft).Scan(&n)
	return n, err
}
