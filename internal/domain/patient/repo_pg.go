package patient

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

const patientCols = `id, clinician_id, mrn, first_name, last_name, date_of_birth, gender,
	phone, email, address, status,
	portal_user_id, account_status, invitation_token, invitation_sent_at, invitation_expires_at,
	created_at, updated_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.ClinicianID, &p.MRN, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender,
		&p.Phone, &p.Email, &p.Address, &p.Status,
		&p.Activation.PortalUserID, &p.Activation.AccountStatus, &p.Activation.InvitationToken,
		&p.Activation.InvitationSentAt, &p.Activation.InvitationExpiresAt,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, clinician_id, mrn, first_name, last_name, date_of_birth, gender,
			phone, email, address, status,
			portal_user_id, account_status, invitation_token, invitation_sent_at, invitation_expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		p.ID, p.ClinicianID, p.MRN, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.Phone, p.Email, p.Address, p.Status,
		p.Activation.PortalUserID, p.Activation.AccountStatus, p.Activation.InvitationToken,
		p.Activation.InvitationSentAt, p.Activation.InvitationExpiresAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, clinicianID string, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1 AND clinician_id = $2`, id, clinicianID))
}

func (r *repoPG) GetAnyByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE mrn = $1`, mrn))
}

func (r *repoPG) GetByPortalUserID(ctx context.Context, portalUserID string) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE portal_user_id = $1`, portalUserID))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET first_name=$3, last_name=$4, date_of_birth=$5, gender=$6,
			phone=$7, email=$8, address=$9, status=$10,
			portal_user_id=$11, account_status=$12, invitation_token=$13,
			invitation_sent_at=$14, invitation_expires_at=$15, updated_at=NOW()
		WHERE id = $1 AND clinician_id = $2`,
		p.ID, p.ClinicianID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.Phone, p.Email, p.Address, p.Status,
		p.Activation.PortalUserID, p.Activation.AccountStatus, p.Activation.InvitationToken,
		p.Activation.InvitationSentAt, p.Activation.InvitationExpiresAt)
	return err
}

func (r *repoPG) List(ctx context.Context, clinicianID, status string, limit, offset int) ([]*Patient, int, error) {
	where := ` WHERE clinician_id = $1`
	args := []interface{}{clinicianID}
	idx := 2
	if status != "" {
		where += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, status)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + patientCols + ` FROM patient` + where +
		fmt.Sprintf(` ORDER BY last_name ASC, first_name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) ListAll(ctx context.Context, clinicianID string) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient WHERE clinician_id = $1 ORDER BY last_name ASC, first_name ASC`, clinicianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func (r *repoPG) CountActive(ctx context.Context, clinicianID string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE clinician_id = $1 AND status = $2`, clinicianID, StatusActive).Scan(&n)
	return n, err
}
