package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsResetDue(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	periodStart := now.Add(-24 * time.Hour)
	beforePeriod := periodStart.Add(-time.Hour)
	afterPeriod := periodStart.Add(time.Hour)

	// Expired period whose renewal webhook never advanced the period fields
	stalePeriodStart := now.AddDate(0, -1, -10)
	stalePeriodEnd := now.AddDate(0, 0, -10)
	insideStalePeriod := stalePeriodStart.Add(24 * time.Hour)
	afterStalePeriod := stalePeriodEnd.Add(time.Hour)

	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{
			name: "never reset",
			sub:  Subscription{CurrentPeriodStart: periodStart},
			want: true,
		},
		{
			name: "last reset before current period",
			sub:  Subscription{CurrentPeriodStart: periodStart, LastCreditReset: &beforePeriod},
			want: true,
		},
		{
			name: "already reset this period",
			sub:  Subscription{CurrentPeriodStart: periodStart, LastCreditReset: &afterPeriod},
			want: false,
		},
		{
			name: "period expired with reset inside the stale period",
			sub: Subscription{
				CurrentPeriodStart: stalePeriodStart,
				CurrentPeriodEnd:   stalePeriodEnd,
				LastCreditReset:    &insideStalePeriod,
			},
			want: true,
		},
		{
			name: "period expired but already reset past its end",
			sub: Subscription{
				CurrentPeriodStart: stalePeriodStart,
				CurrentPeriodEnd:   stalePeriodEnd,
				LastCreditReset:    &afterStalePeriod,
			},
			want: false,
		},
		{
			name: "period not started yet",
			sub:  Subscription{CurrentPeriodStart: now.Add(time.Hour)},
			want: false,
		},
		{
			name: "no period set",
			sub:  Subscription{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.IsResetDue(now))
		})
	}
}
