// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP) / CLI  → parses input, writes output
//	Service (this package) → authorizes, validates, orchestrates
//	Repository            → reads/writes the database
//	oracle.Client         → reads the external ranking service
//
// AUTHORIZATION:
// Every operation that touches a user's data calls auth.RequireUser(ctx)
// before anything else, so a missing identity fails the same way no matter
// which surface (HTTP, CLI, test) invoked it. Only the anonymous oracle
// lookups skip it.
//
// Services depend on interfaces (repository.*, Oracle), never on *sqlite.DB
// or *oracle.Client directly. Tests pass in-memory fakes.
package service

import (
	"context"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/practice-tracker/internal/apperror"
	"github.com/sakif/practice-tracker/internal/model"
	"github.com/sakif/practice-tracker/internal/oracle"
)

// Oracle is the subset of *oracle.Client the services use.
type Oracle interface {
	FetchProfile(ctx context.Context, handle string) (*model.Profile, error)
	SearchByTagAndTierWindow(ctx context.Context, q oracle.Query) ([]model.Problem, error)
	MaxTier() int
}

// Validation limits.
const (
	MaxProjectNameLength  = 100
	MaxLanguageLength     = 30
	MaxDescriptionLength  = 500
	MaxSessionTitleLength = 200
	MaxCodeLength         = 100000 // bytes
	MaxHandleLength       = 40
	MaxTagLength          = 50
)

// parseID rejects ids that cannot have been issued by this system, so a
// malformed id is an invalid argument rather than a not-found.
func parseID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.InvalidArgument(field, field+" is required")
	}
	if _, err := xid.FromString(id); err != nil {
		return apperror.InvalidArgument(field, field+" is malformed")
	}
	return nil
}

// normalizeTag lower-cases a problem tag key and rejects anything that could
// change the shape of the oracle query string.
func normalizeTag(tag string) (string, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return "", apperror.InvalidArgument("tag", "tag is required")
	}
	if len(tag) > MaxTagLength {
		return "", apperror.InvalidArgument("tag", "tag is too long")
	}
	for _, r := range tag {
		if !isKeyRune(r) && r != '-' {
			return "", apperror.InvalidArgument("tag", "tag may only contain letters, digits, '_' and '-'")
		}
	}
	return tag, nil
}

func validateHandle(handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", apperror.InvalidArgument("handle", "handle is required")
	}
	if len(handle) > MaxHandleLength {
		return "", apperror.InvalidArgument("handle", "handle is too long")
	}
	for _, r := range handle {
		if !isKeyRune(r) {
			return "", apperror.InvalidArgument("handle", "handle may only contain letters, digits and '_'")
		}
	}
	return handle, nil
}

func isKeyRune(r rune) bool {
	return r == '_' ||
		('a' <= r && r <= 'z') ||
		('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9')
}
