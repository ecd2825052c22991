package plan

import (
	"testing"

	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPlanValidate(t *testing.T) {
	valid := func() Plan {
		return Plan{
			Name:            "starter",
			Interval:        types.PlanIntervalMonth,
			CreditsPerMonth: decimal.NewFromInt(50),
			TrialCredits:    decimal.NewFromFloat(12.5),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Plan)
		wantErr bool
	}{
		{
			name:   "valid plan",
			mutate: func(p *Plan) {},
		},
		{
			name:   "fractional credit allotment",
			mutate: func(p *Plan) { p.CreditsPerMonth = decimal.NewFromFloat(0.25) },
		},
		{
			name:    "missing name",
			mutate:  func(p *Plan) { p.Name = "" },
			wantErr: true,
		},
		{
			name:    "zero credit allotment",
			mutate:  func(p *Plan) { p.CreditsPerMonth = decimal.Zero },
			wantErr: true,
		},
		{
			name:    "negative credit allotment",
			mutate:  func(p *Plan) { p.CreditsPerMonth = decimal.NewFromInt(-10) },
			wantErr: true,
		},
		{
			name:    "negative trial credits",
			mutate:  func(p *Plan) { p.TrialCredits = decimal.NewFromInt(-1) },
			wantErr: true,
		},
		{
			name:    "unknown interval",
			mutate:  func(p *Plan) { p.Interval = "fortnight" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
