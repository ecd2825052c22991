package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionStatusFromExternal(t *testing.T) {
	cases := map[string]SubscriptionStatus{
		"incomplete":         SubscriptionStatusIncomplete,
		"incomplete_expired": SubscriptionStatusCanceled,
		"trialing":           SubscriptionStatusTrialing,
		"active":             SubscriptionStatusActive,
		"past_due":           SubscriptionStatusPastDue,
		"unpaid":             SubscriptionStatusPastDue,
		"canceled":           SubscriptionStatusCanceled,
	}

	for external, want := range cases {
		got, err := SubscriptionStatusFromExternal(external)
		assert.NoError(t, err, external)
		assert.Equal(t, want, got)
	}

	_, err := SubscriptionStatusFromExternal("paused")
	assert.Error(t, err)
}
