package domain

import "time"

// AccessToken is an issued bearer token and its expiry.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}
