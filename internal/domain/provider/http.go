package provider

import (
	"context"
	"encoding/json"
	"net/http"

	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/httpclient"
)

// DefaultJobCost is charged when a provider does not price jobs itself
const DefaultJobCost = 1

// HTTPProvider submits render jobs to a remote endpoint over HTTP. It is
// the generic variant used for providers that expose a simple submit API.
type HTTPProvider struct {
	name     string
	endpoint string
	apiKey   string
	cost     int64
	client   httpclient.Client
}

func NewHTTPProvider(name, endpoint, apiKey string, cost int64, client httpclient.Client) *HTTPProvider {
	if cost <= 0 {
		cost = DefaultJobCost
	}
	return &HTTPProvider{
		name:     name,
		endpoint: endpoint,
		apiKey:   apiKey,
		cost:     cost,
		client:   client,
	}
}

func (p *HTTPProvider) Name() string {
	return p.name
}

func (p *HTTPProvider) Cost(_ *SubmitRequest) int64 {
	return p.cost
}

func (p *HTTPProvider) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode render job payload").
			Mark(ierr.ErrSystem)
	}

	resp, err := p.client.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    p.endpoint,
		Headers: map[string]string{
			"Authorization": "Bearer " + p.apiKey,
		},
		Body: body,
	})
	if err != nil {
		return nil, err
	}

	var out SubmitResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Render provider returned an unexpected response").
			WithReportableDetails(map[string]interface{}{
				"provider": p.name,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	return &out, nil
}
