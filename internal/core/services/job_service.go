package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"

	"bambu.printjobs/internal/core/domain"
	"bambu.printjobs/internal/core/metrics"
	"bambu.printjobs/internal/core/ports"
	"bambu.printjobs/internal/core/tracing"
)

var ErrJobNotFound = errors.New("print job not found")

// IsPrintJobEntity reports whether an entity id selects a print job.
func IsPrintJobEntity(entityID string) bool {
	return strings.HasPrefix(entityID, domain.PrintJobDomain) &&
		strings.Contains(entityID, domain.PrintJobInfix)
}

// ExtractPrintJobs derives print jobs from reg in registry order. A nil
// registry yields an empty, non-nil slice.
func ExtractPrintJobs(reg *domain.Registry) []domain.PrintJob {
	jobs := lo.FilterMap(reg.Entries(), func(e domain.StateEntry, _ int) (domain.PrintJob, bool) {
		if !IsPrintJobEntity(e.EntityID) {
			return domain.PrintJob{}, false
		}
		return newPrintJob(e), true
	})
	if jobs == nil {
		return []domain.PrintJob{}
	}
	return jobs
}

func newPrintJob(e domain.StateEntry) domain.PrintJob {
	friendly := lo.FromPtr(e.Attributes.FriendlyName)

	name := friendly
	if name == "" {
		name = e.EntityID[strings.LastIndex(e.EntityID, "_")+1:]
	}

	return domain.PrintJob{
		Name: name,
		// friendly_name is used verbatim, so an absent name leaves an empty segment.
		Image:    fmt.Sprintf(domain.ThumbnailTemplate, friendly),
		EntityID: e.EntityID,
	}
}

type JobService struct {
	registry ports.StateRegistry
}

func NewJobService(registry ports.StateRegistry) *JobService {
	return &JobService{registry: registry}
}

// ListPrintJobs reads the registry and extracts the current job list.
func (s *JobService) ListPrintJobs(ctx context.Context) (jobs []domain.PrintJob, err error) {
	ctx, span := tracing.StartSpan(ctx, "JobService.ListPrintJobs")
	defer func() { tracing.EndSpan(span, err) }()

	reg, err := s.registry.States(ctx)
	if err != nil {
		metrics.RecordRegistryFetchError()
		return nil, fmt.Errorf("failed to read state registry: %w", err)
	}

	jobs = ExtractPrintJobs(reg)
	metrics.SetJobsAvailable(len(jobs))
	span.SetAttributes(
		attribute.Int("registry.entries", reg.Len()),
		attribute.Int("printjobs.count", len(jobs)),
	)
	return jobs, nil
}

// GetPrintJob returns the job currently backed by entityID.
func (s *JobService) GetPrintJob(ctx context.Context, entityID string) (*domain.PrintJob, error) {
	jobs, err := s.ListPrintJobs(ctx)
	if err != nil {
		return nil, err
	}
	job, ok := lo.Find(jobs, func(j domain.PrintJob) bool {
		return j.EntityID == entityID
	})
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, entityID)
	}
	return &job, nil
}
