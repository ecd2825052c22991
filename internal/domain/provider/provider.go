package provider

import (
	"context"

	"github.com/renderbase/renderbase/internal/types"
)

// SubmitRequest is the payload handed to a render provider
type SubmitRequest struct {
	JobID     string         `json:"job_id"`
	AccountID string         `json:"account_id"`
	Prompt    string         `json:"prompt"`
	Options   types.Metadata `json:"options,omitempty"`
}

// SubmitResponse is the provider's acknowledgement of a submitted job
type SubmitResponse struct {
	ProviderJobRef string `json:"provider_job_ref"`
}

// Provider is one render backend. Each implementation is an explicit
// variant dispatched through the Registry by name; the submission and
// polling protocol beyond Submit is out of scope here.
type Provider interface {
	Name() string
	Cost(req *SubmitRequest) int64
	Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error)
}
