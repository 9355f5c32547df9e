package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/praxishealth/praxis/internal/domain/analytics"
	"github.com/praxishealth/praxis/internal/platform/httperr"
	"github.com/praxishealth/praxis/internal/platform/notification"
	"github.com/praxishealth/praxis/internal/platform/tasks"
	"github.com/praxishealth/praxis/pkg/dates"
)

const (
	mrnMaxAttempts   = 5
	invitationExpiry = 7 * 24 * time.Hour
	invitationTmpl   = "patient-invitation"
)

var validGenders = map[string]bool{
	"male":              true,
	"female":            true,
	"other":             true,
	"prefer-not-to-say": true,
}

// VisitSource supplies visit-frequency enrichment for read endpoints.
type VisitSource interface {
	VisitsFor(ctx context.Context, patientID uuid.UUID) (analytics.VisitFrequency, error)
}

// PortalProvisioner creates a portal login for an activated patient and
// returns its user id.
type PortalProvisioner interface {
	Provision(ctx context.Context, email, password string) (string, error)
}

// LocalProvisioner issues opaque local user ids. Stands in for an external
// identity provider in development.
type LocalProvisioner struct {
	Logger zerolog.Logger
}

func (p *LocalProvisioner) Provision(_ context.Context, email, _ string) (string, error) {
	id := uuid.NewString()
	p.Logger.Info().Str("email", email).Str("portal_user_id", id).Msg("provisioned portal user")
	return id, nil
}

type Service struct {
	repo          Repository
	visits        VisitSource
	notifier      *notification.Service
	runner        *tasks.Runner
	provisioner   PortalProvisioner
	portalBaseURL string
	now           func() time.Time
}

func NewService(repo Repository, visits VisitSource, notifier *notification.Service,
	runner *tasks.Runner, provisioner PortalProvisioner, portalBaseURL string) *Service {
	return &Service{
		repo:          repo,
		visits:        visits,
		notifier:      notifier,
		runner:        runner,
		provisioner:   provisioner,
		portalBaseURL: portalBaseURL,
		now:           time.Now,
	}
}

func validate(p *Patient) []string {
	var msgs []string
	if strings.TrimSpace(p.FirstName) == "" {
		msgs = append(msgs, "firstName is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		msgs = append(msgs, "lastName is required")
	}
	if p.DateOfBirth != nil {
		if _, ok := dates.Parse(*p.DateOfBirth); !ok {
			msgs = append(msgs, "dateOfBirth must be a valid ISO date (YYYY-MM-DD)")
		}
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		msgs = append(msgs, "gender must be one of: male, female, other, prefer-not-to-say")
	}
	if p.Email != nil && !strings.Contains(*p.Email, "@") {
		msgs = append(msgs, "email must be a valid email address")
	}
	if p.Status != "" && p.Status != StatusActive && p.Status != StatusInactive {
		msgs = append(msgs, "status must be active or inactive")
	}
	return msgs
}

// Create persists a new patient with a server-generated MRN. MRN generation
// retries on collision up to mrnMaxAttempts. When the patient has an email a
// portal invitation is issued and dispatched on the task runner; delivery is
// best-effort and never fails creation.
func (s *Service) Create(ctx context.Context, clinicianID string, p *Patient) error {
	p.ClinicianID = clinicianID
	if p.Status == "" {
		p.Status = StatusActive
	}
	p.Activation = Activation{AccountStatus: AccountPending}
	if msgs := validate(p); len(msgs) > 0 {
		return httperr.Validation(msgs...)
	}

	mrn, err := s.uniqueMRN(ctx)
	if err != nil {
		return err
	}
	p.MRN = mrn

	if p.Email != nil && *p.Email != "" {
		if err := s.stampInvitation(p); err != nil {
			return err
		}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	if p.Activation.InvitationToken != nil {
		s.dispatchInvitation(p)
	}
	return nil
}

func (s *Service) uniqueMRN(ctx context.Context) (string, error) {
	for attempt := 0; attempt < mrnMaxAttempts; attempt++ {
		mrn, err := generateMRN(s.now())
		if err != nil {
			return "", err
		}
		_, err = s.repo.GetByMRN(ctx, mrn)
		if errors.Is(err, pgx.ErrNoRows) {
			return mrn, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("could not generate a unique MRN after %d attempts", mrnMaxAttempts)
}

func (s *Service) stampInvitation(p *Patient) error {
	token, err := newInvitationToken()
	if err != nil {
		return err
	}
	sentAt := s.now()
	expiresAt := sentAt.Add(invitationExpiry)
	p.Activation.AccountStatus = AccountPending
	p.Activation.InvitationToken = &token
	p.Activation.InvitationSentAt = &sentAt
	p.Activation.InvitationExpiresAt = &expiresAt
	return nil
}

func (s *Service) dispatchInvitation(p *Patient) {
	if s.notifier == nil || s.runner == nil {
		return
	}
	email := *p.Email
	data := map[string]string{
		"patient_name": p.FirstName + " " + p.LastName,
		"activation_link": fmt.Sprintf("%s/activate?patientId=%s&token=%s",
			s.portalBaseURL, p.ID, *p.Activation.InvitationToken),
		"expires_at": p.Activation.InvitationExpiresAt.Format(dates.ISODate),
	}
	s.runner.Go("patient-invitation", func(ctx context.Context) error {
		_, err := s.notifier.Send(ctx, invitationTmpl, email, data)
		return err
	})
}

func (s *Service) get(ctx context.Context, clinicianID string, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, clinicianID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.ErrNotFound
	}
	return p, err
}

// Get returns the patient decorated with age and best-effort visit frequency.
func (s *Service) Get(ctx context.Context, clinicianID string, id uuid.UUID) (*View, error) {
	p, err := s.get(ctx, clinicianID, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, p), nil
}

func (s *Service) List(ctx context.Context, clinicianID, status string, limit, offset int) ([]*View, int, error) {
	items, total, err := s.repo.List(ctx, clinicianID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	views := make([]*View, len(items))
	for i, p := range items {
		views[i] = s.enrich(ctx, p)
	}
	return views, total, nil
}

// enrich never fails: a broken visit source degrades to the zero frequency.
func (s *Service) enrich(ctx context.Context, p *Patient) *View {
	v := &View{Patient: p, Age: s.age(p)}
	if s.visits != nil {
		vf, err := s.visits.VisitsFor(ctx, p.ID)
		if err != nil {
			vf = analytics.VisitFrequency{}
		}
		v.VisitFrequency = &vf
	}
	return v
}

func (s *Service) age(p *Patient) *int {
	if p.DateOfBirth == nil {
		return nil
	}
	return dates.Age(*p.DateOfBirth, s.now())
}

// Update applies the non-nil fields of params.
func (s *Service) Update(ctx context.Context, clinicianID string, id uuid.UUID, params *UpdateParams) (*Patient, error) {
	p, err := s.get(ctx, clinicianID, id)
	if err != nil {
		return nil, err
	}

	if params.FirstName != nil {
		p.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		p.LastName = *params.LastName
	}
	if params.DateOfBirth != nil {
		p.DateOfBirth = params.DateOfBirth
	}
	if params.Gender != nil {
		p.Gender = params.Gender
	}
	if params.Phone != nil {
		p.Phone = params.Phone
	}
	if params.Email != nil {
		p.Email = params.Email
	}
	if params.Address != nil {
		p.Address = params.Address
	}
	if params.Status != nil {
		// Soft delete is one-way: an inactive patient cannot be reactivated
		// through an update.
		if p.Status == StatusInactive && *params.Status == StatusActive {
			return nil, fmt.Errorf("%w: patient is inactive and cannot be reactivated", httperr.ErrConflict)
		}
		p.Status = *params.Status
	}

	if msgs := validate(p); len(msgs) > 0 {
		return nil, httperr.Validation(msgs...)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete soft-deletes: the record stays, status flips to inactive.
func (s *Service) Delete(ctx context.Context, clinicianID string, id uuid.UUID) error {
	p, err := s.get(ctx, clinicianID, id)
	if err != nil {
		return err
	}
	p.Status = StatusInactive
	return s.repo.Update(ctx, p)
}

// ResendInvitation rotates the invitation token and redispatches the email.
// Blocked when the account is already active or the patient has no email.
func (s *Service) ResendInvitation(ctx context.Context, clinicianID string, id uuid.UUID) (*Patient, error) {
	p, err := s.get(ctx, clinicianID, id)
	if err != nil {
		return nil, err
	}
	if p.Activation.AccountStatus == AccountActive {
		return nil, fmt.Errorf("%w: account is already active", httperr.ErrConflict)
	}
	if p.Email == nil || *p.Email == "" {
		return nil, fmt.Errorf("%w: patient has no email on file", httperr.ErrConflict)
	}
	if err := s.stampInvitation(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.dispatchInvitation(p)
	return p, nil
}

// Activate validates an invitation and provisions the portal login. The
// token must match, be unexpired, and the account must not already be
// active.
func (s *Service) Activate(ctx context.Context, patientID uuid.UUID, token, password string) (*Patient, error) {
	p, err := s.repo.GetAnyByID(ctx, patientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.Activation.AccountStatus == AccountActive {
		return nil, fmt.Errorf("%w: account is already active", httperr.ErrConflict)
	}
	if p.Activation.InvitationToken == nil || *p.Activation.InvitationToken != token {
		return nil, fmt.Errorf("%w: invalid invitation token", httperr.ErrConflict)
	}
	if p.Activation.InvitationExpiresAt == nil || s.now().After(*p.Activation.InvitationExpiresAt) {
		return nil, fmt.Errorf("%w: invitation token has expired", httperr.ErrConflict)
	}

	email := ""
	if p.Email != nil {
		email = *p.Email
	}
	portalUserID, err := s.provisioner.Provision(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("provision portal user: %w", err)
	}

	p.Activation.PortalUserID = &portalUserID
	p.Activation.AccountStatus = AccountActive
	p.Activation.InvitationToken = nil
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Search ranks the clinician's patients against the query. The fields
// parameter narrows which attributes are searched; empty means all.
func (s *Service) Search(ctx context.Context, clinicianID, query string, fields []string) (*SearchResult, error) {
	candidates, err := s.repo.ListAll(ctx, clinicianID)
	if err != nil {
		return nil, err
	}
	hits := Rank(candidates, query, fields)
	for _, h := range hits {
		h.Age = s.age(h.Patient)
	}
	if hits == nil {
		hits = []*ScoredPatient{}
	}
	return &SearchResult{Data: hits, Total: len(hits), Query: query}, nil
}

// ByPortalUser resolves the patient bound to a portal login.
func (s *Service) ByPortalUser(ctx context.Context, portalUserID string) (*Patient, error) {
	p, err := s.repo.GetByPortalUserID(ctx, portalUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.ErrNotFound
	}
	return p, err
}
