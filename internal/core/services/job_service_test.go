package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"bambu.printjobs/internal/core/domain"
)

func entry(id string, friendly *string) domain.StateEntry {
	return domain.StateEntry{EntityID: id, Attributes: domain.Attributes{FriendlyName: friendly}}
}

func TestExtractPrintJobs(t *testing.T) {
	tests := []struct {
		name     string
		registry *domain.Registry
		expected []domain.PrintJob
	}{
		{
			name:     "nil registry",
			registry: nil,
			expected: []domain.PrintJob{},
		},
		{
			name:     "empty registry",
			registry: domain.NewRegistry(nil),
			expected: []domain.PrintJob{},
		},
		{
			name: "no qualifying entries",
			registry: domain.NewRegistry([]domain.StateEntry{
				entry("sensor.room_temp", domain.StringPtr("Room")),
				entry("image.foo_other_bar", domain.StringPtr("Other")),
				entry("sensor.printer1_printjob_shark", domain.StringPtr("Wrong domain")),
				entry("image.printer1printjob_shark", domain.StringPtr("No infix")),
			}),
			expected: []domain.PrintJob{},
		},
		{
			name: "friendly name present",
			registry: domain.NewRegistry([]domain.StateEntry{
				entry("image.printer1_printjob_shark", domain.StringPtr("Shark Toy")),
			}),
			expected: []domain.PrintJob{{
				Name:     "Shark Toy",
				Image:    "/local/bambu_lab/cache/Shark Toy/Metadata/plate_1.png",
				EntityID: "image.printer1_printjob_shark",
			}},
		},
		{
			name: "friendly name absent",
			registry: domain.NewRegistry([]domain.StateEntry{
				entry("image.printer1_printjob_shark", nil),
			}),
			expected: []domain.PrintJob{{
				Name:     "shark",
				Image:    "/local/bambu_lab/cache//Metadata/plate_1.png",
				EntityID: "image.printer1_printjob_shark",
			}},
		},
		{
			name: "friendly name empty",
			registry: domain.NewRegistry([]domain.StateEntry{
				entry("image.printer1_printjob_benchy_v2", domain.StringPtr("")),
			}),
			expected: []domain.PrintJob{{
				Name:     "v2",
				Image:    "/local/bambu_lab/cache//Metadata/plate_1.png",
				EntityID: "image.printer1_printjob_benchy_v2",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ExtractPrintJobs(tt.registry))
		})
	}
}

func TestExtractPrintJobs_PreservesRegistryOrder(t *testing.T) {
	reg := domain.NewRegistry([]domain.StateEntry{
		entry("image.p1_printjob_zebra", domain.StringPtr("Zebra")),
		entry("sensor.room_temp", nil),
		entry("image.p1_printjob_apple", domain.StringPtr("Apple")),
		entry("image.cover_image", nil),
		entry("image.p1_printjob_mango", domain.StringPtr("Mango")),
	})

	jobs := ExtractPrintJobs(reg)

	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name)
	}
	require.Equal(t, []string{"Zebra", "Apple", "Mango"}, names)
}

func TestExtractPrintJobs_FreshValues(t *testing.T) {
	reg := domain.NewRegistry([]domain.StateEntry{
		entry("image.p1_printjob_cube", domain.StringPtr("Cube")),
	})

	first := ExtractPrintJobs(reg)
	first[0].Name = "mutated"

	second := ExtractPrintJobs(reg)
	require.Equal(t, "Cube", second[0].Name)
}

func TestJobService_ListPrintJobs(t *testing.T) {
	svc := NewJobService(&fakeRegistry{reg: domain.NewRegistry([]domain.StateEntry{
		entry("image.p1_printjob_cube", domain.StringPtr("Cube")),
		entry("light.kitchen", domain.StringPtr("Kitchen")),
	})})

	jobs, err := svc.ListPrintJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "image.p1_printjob_cube", jobs[0].EntityID)
}

func TestJobService_ListPrintJobs_RegistryError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewJobService(&fakeRegistry{err: boom})

	_, err := svc.ListPrintJobs(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestJobService_GetPrintJob(t *testing.T) {
	svc := NewJobService(&fakeRegistry{reg: domain.NewRegistry([]domain.StateEntry{
		entry("image.p1_printjob_cube", domain.StringPtr("Cube")),
		entry("image.foo_other_bar", domain.StringPtr("Other")),
	})})

	job, err := svc.GetPrintJob(context.Background(), "image.p1_printjob_cube")
	require.NoError(t, err)
	require.Equal(t, "Cube", job.Name)

	_, err = svc.GetPrintJob(context.Background(), "image.foo_other_bar")
	require.ErrorIs(t, err, ErrJobNotFound)
}
