package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/sakif/practice-tracker/internal/apperror"
	"github.com/sakif/practice-tracker/internal/auth"
	"github.com/sakif/practice-tracker/internal/model"
	"github.com/sakif/practice-tracker/internal/repository"
)

// IdentityService binds verified external identities to internal users and
// keeps each user's ranking handle and tier.
//
//	AuthHandler → IdentityService → UserRepository
//	                              ↘ TokenService (JWT)
//	                              ↘ Oracle (handle registration)
type IdentityService struct {
	users   repository.UserRepository
	tokens  *auth.TokenService
	oracle  Oracle
	domains []string
	now     func() time.Time
	logger  *slog.Logger
}

// NewIdentityService creates an IdentityService. allowedDomains is the
// institutional suffix allow-list; an empty list admits every domain.
func NewIdentityService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	oracle Oracle,
	allowedDomains []string,
	logger *slog.Logger,
) *IdentityService {
	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.Trim(strings.TrimSpace(d), "."))
		if d != "" {
			domains = append(domains, d)
		}
	}

	return &IdentityService{
		users:   users,
		tokens:  tokens,
		oracle:  oracle,
		domains: domains,
		now:     time.Now,
		logger:  logger,
	}
}

// LoginResult bundles the user record and the issued JWT so the handler can
// set the cookie and respond in one step.
type LoginResult struct {
	User  *model.User
	Token string
}

// ResolveIdentity applies the domain policy and then upserts the user keyed
// by the provider subject. A rejected email never reaches the database.
func (s *IdentityService) ResolveIdentity(ctx context.Context, identity model.ExternalIdentity) (*model.User, error) {
	identity.Subject = strings.TrimSpace(identity.Subject)
	identity.Email = strings.ToLower(strings.TrimSpace(identity.Email))
	identity.DisplayName = strings.TrimSpace(identity.DisplayName)

	if identity.Subject == "" {
		return nil, apperror.InvalidArgument("subject", "identity subject is required")
	}
	if !EmailDomainAllowed(identity.Email, s.domains) {
		s.logger.Warn("login rejected by domain policy", slog.String("email", identity.Email))
		return nil, apperror.InvalidDomain(identity.Email)
	}

	user, err := s.users.UpsertBySubject(ctx, identity, s.now())
	if err != nil {
		return nil, fmt.Errorf("service/identity: resolving subject %s: %w", identity.Subject, err)
	}

	return user, nil
}

// Login resolves identity and issues a token for the resulting user.
func (s *IdentityService) Login(ctx context.Context, identity model.ExternalIdentity) (*LoginResult, error) {
	user, err := s.ResolveIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/identity: issuing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated", slog.String("userID", user.ID))

	return &LoginResult{User: user, Token: token}, nil
}

// Me returns the caller's user record.
func (s *IdentityService) Me(ctx context.Context) (*model.User, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	return s.users.GetUserByID(ctx, userID)
}

// RegisterHandle looks handle up on the oracle and, only if that succeeds,
// stores handle, tier and rating on the caller. An oracle failure leaves the
// previously stored tier untouched.
func (s *IdentityService) RegisterHandle(ctx context.Context, handle string) (*model.Profile, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	handle, err = validateHandle(handle)
	if err != nil {
		return nil, err
	}

	profile, err := s.oracle.FetchProfile(ctx, handle)
	if err != nil {
		s.logger.Warn("handle registration failed at oracle",
			slog.String("userID", userID),
			slog.String("handle", handle),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	_, err = s.users.UpdateTier(ctx, userID, repository.TierSnapshot{
		Handle:   handle,
		Tier:     profile.Tier,
		Rating:   profile.Rating,
		SyncedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("service/identity: storing tier for user %s: %w", userID, err)
	}

	s.logger.Info("handle registered",
		slog.String("userID", userID),
		slog.String("handle", handle),
		slog.Int("tier", profile.Tier),
	)

	return profile, nil
}

// EmailDomainAllowed reports whether email's domain equals one of allowed or
// is a subdomain of one. An empty allow-list admits any well-formed address.
func EmailDomainAllowed(email string, allowed []string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}

	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(email[at+1:])

	if len(allowed) == 0 {
		return true
	}
	for _, suffix := range allowed {
		if domain == suffix || strings.HasSuffix(domain, "."+suffix) {
			return true
		}
	}
	return false
}
