// Package model defines the data structures used throughout the application.
package model

import "time"

// User is the internal account bound to one external identity.
//
// ExternalSubject is the identity provider's stable subject id and is the
// upsert key. Handle, Tier and Rating stay nil until the student registers a
// ranking handle; Tier is the only input personal recommendations need.
type User struct {
	ID              string     `json:"id"`
	ExternalSubject string     `json:"-"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"displayName"`
	Handle          *string    `json:"handle,omitempty"`
	Tier            *int       `json:"tier,omitempty"`
	Rating          *int       `json:"rating,omitempty"`
	LastTierSyncAt  *time.Time `json:"lastTierSyncAt,omitempty"`
	LastLoginAt     time.Time  `json:"lastLoginAt"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ExternalIdentity is what the identity provider hands us once its own
// protocol has verified the user.
type ExternalIdentity struct {
	Subject     string
	Email       string
	DisplayName string
}
