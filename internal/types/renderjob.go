package types

import (
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/samber/lo"
)

// RenderJobStatus is the local status of a submitted render job
type RenderJobStatus string

const (
	RenderJobStatusPending   RenderJobStatus = "pending"
	RenderJobStatusSubmitted RenderJobStatus = "submitted"
	RenderJobStatusFailed    RenderJobStatus = "failed"
)

func (s RenderJobStatus) Validate() error {
	allowed := []RenderJobStatus{
		RenderJobStatusPending,
		RenderJobStatusSubmitted,
		RenderJobStatusFailed,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid render job status").
			WithReportableDetails(map[string]any{
				"status": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
