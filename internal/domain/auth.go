package domain

import "time"

// Token describes issued authentication token metadata returned to callers.
// The full claim set, including issuance time, travels inside Value.
type Token struct {
	Value     string
	SubjectID string
	Subject   string
	Role      UserRole
	ExpiresAt time.Time
}
