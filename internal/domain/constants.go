package domain

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Business validation constants
const (
	MaxNotesLength        = 500
	MaxCustomerNameLength = 200
	MaxLockReasonLength   = 64
)
