package domain

import "fmt"

const (
	// PrintJobDomain and PrintJobInfix form the selection predicate on entity ids.
	PrintJobDomain = "image."
	PrintJobInfix  = "_printjob_"

	PressDomain  = "image"
	PressService = "press"

	// ThumbnailTemplate is the path served by the thumbnail cache.
	ThumbnailTemplate = "/local/bambu_lab/cache/%s/Metadata/plate_1.png"
)

// PrintJob is derived fresh from a StateEntry on every extraction.
type PrintJob struct {
	Name     string `json:"name"`
	Image    string `json:"image"`
	EntityID string `json:"entity_id"`
}

// InvocationError is the only error kind of the press action.
type InvocationError struct {
	EntityID string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoke %s.%s on %s: %v", PressDomain, PressService, e.EntityID, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
