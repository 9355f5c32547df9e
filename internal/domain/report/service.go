package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/praxishealth/praxis/internal/platform/httperr"
	"github.com/praxishealth/praxis/internal/platform/tasks"
)

var validTypes = map[string]bool{
	TypeMedicalReport: true,
	TypeTranscription: true,
}

var validStatuses = map[string]bool{
	StatusPendingUpload: true,
	StatusProcessing:    true,
	StatusCompleted:     true,
	StatusFailed:        true,
	StatusDraft:         true,
	StatusReviewed:      true,
	StatusFinalized:     true,
}

// ExtractionTrigger kicks off downstream medical-entity extraction for a
// completed transcription. The call is dispatched detached; its outcome
// never reaches the caller.
type ExtractionTrigger interface {
	TriggerExtraction(ctx context.Context, r *Report) error
}

// LogTrigger records the trigger instead of invoking a processing engine.
// Used in development and tests.
type LogTrigger struct {
	Logger zerolog.Logger
}

func (l *LogTrigger) TriggerExtraction(_ context.Context, r *Report) error {
	l.Logger.Info().Str("report_id", r.ID.String()).Msg("entity extraction triggered")
	return nil
}

type Service struct {
	repo      Repository
	extractor ExtractionTrigger
	runner    *tasks.Runner
}

func NewService(repo Repository, extractor ExtractionTrigger, runner *tasks.Runner) *Service {
	return &Service{repo: repo, extractor: extractor, runner: runner}
}

func validate(r *Report) []string {
	var msgs []string
	if !validTypes[r.Type] {
		msgs = append(msgs, "type must be medical-report or transcription")
	}
	if !validStatuses[r.Status] {
		msgs = append(msgs, "status is not a known report status")
	}
	return msgs
}

// Create persists a new report. Transcriptions default to pending_upload and
// get a server-generated job name; authored reports default to draft.
func (s *Service) Create(ctx context.Context, clinicianID string, r *Report) error {
	r.ClinicianID = clinicianID
	if r.Status == "" {
		if r.Type == TypeTranscription {
			r.Status = StatusPendingUpload
		} else {
			r.Status = StatusDraft
		}
	}
	if r.Type == TypeTranscription && r.JobName == nil {
		job := fmt.Sprintf("transcription-%s", uuid.NewString())
		r.JobName = &job
	}
	if msgs := validate(r); len(msgs) > 0 {
		return httperr.Validation(msgs...)
	}
	return s.repo.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, clinicianID string, id uuid.UUID) (*Report, error) {
	r, err := s.repo.GetByID(ctx, clinicianID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.ErrNotFound
	}
	return r, err
}

func (s *Service) List(ctx context.Context, clinicianID string, f Filter, limit, offset int) ([]*Report, int, error) {
	return s.repo.List(ctx, clinicianID, f, limit, offset)
}

// Update applies the non-nil fields of params. A transcription reaching
// completed status triggers entity extraction on the task runner.
func (s *Service) Update(ctx context.Context, clinicianID string, id uuid.UUID, params *UpdateParams) (*Report, error) {
	r, err := s.Get(ctx, clinicianID, id)
	if err != nil {
		return nil, err
	}
	prevStatus := r.Status

	if params.PatientID != nil {
		r.PatientID = params.PatientID
	}
	if params.Status != nil {
		r.Status = *params.Status
	}
	if params.Title != nil {
		r.Title = params.Title
	}
	if params.TranscriptText != nil {
		r.TranscriptText = params.TranscriptText
	}
	if params.AnalysisSummary != nil {
		r.AnalysisSummary = params.AnalysisSummary
	}

	if msgs := validate(r); len(msgs) > 0 {
		return nil, httperr.Validation(msgs...)
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}

	if r.Type == TypeTranscription && r.Status == StatusCompleted && prevStatus != StatusCompleted {
		s.dispatchExtraction(r)
	}
	return r, nil
}

func (s *Service) dispatchExtraction(r *Report) {
	if s.extractor == nil || s.runner == nil {
		return
	}
	cp := *r
	s.runner.Go("entity-extraction", func(ctx context.Context) error {
		return s.extractor.TriggerExtraction(ctx, &cp)
	})
}

// Delete removes the report permanently.
func (s *Service) Delete(ctx context.Context, clinicianID string, id uuid.UUID) error {
	if _, err := s.Get(ctx, clinicianID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, clinicianID, id)
}
