package models

import "time"

// Исходы операций для метрик
const (
	OutcomeGranted   = "granted"
	OutcomeDenied    = "denied"
	OutcomeReleased  = "released"
	OutcomeNotOwner  = "not_owner"
	OutcomeConfirmed = "confirmed"
	OutcomeLost      = "lost"
	OutcomeError     = "error"
)

// AcquireResult результат попытки захватить слот
type AcquireResult struct {
	Granted   bool      `json:"granted"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Reason    string    `json:"reason,omitempty"` // причина отказа, если Granted == false
}

// Availability результат проверки доступности слота
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
