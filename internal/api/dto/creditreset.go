package dto

import "time"

// CreditResetSweepResponse summarises one pass of the monthly credit reset
// task over all active subscriptions
type CreditResetSweepResponse struct {
	StartedAt time.Time `json:"started_at"`
	Examined  int       `json:"examined"`
	Reset     int       `json:"reset"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}
