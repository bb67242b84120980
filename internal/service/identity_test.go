package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/practice-tracker/internal/apperror"
	"github.com/sakif/practice-tracker/internal/auth"
	"github.com/sakif/practice-tracker/internal/model"
)

func newTestIdentityService(t *testing.T, domains ...string) (*IdentityService, *fakeUserRepo, *fakeOracle) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	users := newFakeUserRepo()
	o := newFakeOracle()
	return NewIdentityService(users, tokens, o, domains, discardLogger()), users, o
}

func TestEmailDomainAllowed(t *testing.T) {
	allowed := []string{"sejong.ac.kr"}

	tests := []struct {
		email   string
		allowed []string
		want    bool
	}{
		{"kim@sejong.ac.kr", allowed, true},
		{"kim@cs.sejong.ac.kr", allowed, true},
		{"kim@notsejong.ac.kr", allowed, false},
		{"kim@sejong.ac.kr.evil.com", allowed, false},
		{"kim@gmail.com", allowed, false},
		{"kim@gmail.com", nil, true},
		{"not-an-email", nil, false},
		{"", allowed, false},
		{"Kim <kim@sejong.ac.kr>", allowed, false},
		{"kim@example.org", []string{"example.com", "example.org"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := EmailDomainAllowed(tt.email, tt.allowed); got != tt.want {
				t.Errorf("EmailDomainAllowed(%q, %v) = %v, want %v", tt.email, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestResolveIdentity_RejectedDomainNeverPersists(t *testing.T) {
	svc, users, _ := newTestIdentityService(t, "sejong.ac.kr")

	_, err := svc.ResolveIdentity(context.Background(), model.ExternalIdentity{
		Subject: "sub-1", Email: "kim@gmail.com", DisplayName: "Kim",
	})
	if !errors.Is(err, apperror.ErrInvalidDomain) {
		t.Fatalf("error = %v, want ErrInvalidDomain", err)
	}
	if users.upserts != 0 {
		t.Errorf("upserts = %d, want 0", users.upserts)
	}
}

func TestResolveIdentity_NormalisesAndAllowsSubdomain(t *testing.T) {
	svc, _, _ := newTestIdentityService(t, ".Sejong.AC.kr ")

	u, err := svc.ResolveIdentity(context.Background(), model.ExternalIdentity{
		Subject: "sub-1", Email: "  Kim@CS.Sejong.ac.kr ", DisplayName: " Kim ",
	})
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}
	if u.Email != "kim@cs.sejong.ac.kr" {
		t.Errorf("Email = %q, want lower-cased", u.Email)
	}
	if u.DisplayName != "Kim" {
		t.Errorf("DisplayName = %q, want trimmed", u.DisplayName)
	}
}

func TestResolveIdentity_EmptySubject(t *testing.T) {
	svc, _, _ := newTestIdentityService(t)

	_, err := svc.ResolveIdentity(context.Background(), model.ExternalIdentity{Email: "kim@sejong.ac.kr"})
	if !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestResolveIdentity_Idempotent(t *testing.T) {
	svc, users, _ := newTestIdentityService(t, "sejong.ac.kr")
	ctx := context.Background()
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	svc.now = func() time.Time { return t0 }
	first, err := svc.ResolveIdentity(ctx, model.ExternalIdentity{
		Subject: "sub-1", Email: "kim@sejong.ac.kr", DisplayName: "Kim",
	})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	svc.now = func() time.Time { return t0.Add(time.Hour) }
	second, err := svc.ResolveIdentity(ctx, model.ExternalIdentity{
		Subject: "sub-1", Email: "kim@sejong.ac.kr", DisplayName: "Kim Minji",
	})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("ID changed on re-login")
	}
	if !second.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", second.CreatedAt, t0)
	}
	if second.DisplayName != "Kim Minji" {
		t.Errorf("DisplayName = %q, want refreshed", second.DisplayName)
	}
	if len(users.byID) != 1 {
		t.Errorf("users = %d, want 1", len(users.byID))
	}
}

func TestLogin_IssuesTokenForUser(t *testing.T) {
	svc, _, _ := newTestIdentityService(t, "sejong.ac.kr")

	res, err := svc.Login(context.Background(), model.ExternalIdentity{
		Subject: "sub-1", Email: "kim@sejong.ac.kr", DisplayName: "Kim",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	userID, err := svc.tokens.Validate(res.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if userID != res.User.ID {
		t.Errorf("token subject = %q, want %q", userID, res.User.ID)
	}
}

func TestMe(t *testing.T) {
	svc, users, _ := newTestIdentityService(t)
	u := users.seed(nil)

	got, err := svc.Me(asUser(u.ID))
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("Me().ID = %q, want %q", got.ID, u.ID)
	}

	if _, err := svc.Me(context.Background()); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("anonymous Me() error = %v, want ErrUnauthorized", err)
	}
}

func TestRegisterHandle(t *testing.T) {
	svc, users, o := newTestIdentityService(t)
	o.profiles["kim_01"] = model.Profile{Handle: "kim_01", Tier: 12, Rating: 1234, SolvedCount: 321}
	u := users.seed(nil)
	synced := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return synced }

	p, err := svc.RegisterHandle(asUser(u.ID), " kim_01 ")
	if err != nil {
		t.Fatalf("RegisterHandle() error = %v", err)
	}
	if p.Tier != 12 || p.Rating != 1234 {
		t.Errorf("profile = %+v", p)
	}

	stored, _ := users.GetUserByID(context.Background(), u.ID)
	if stored.Handle == nil || *stored.Handle != "kim_01" {
		t.Errorf("Handle = %v, want kim_01", stored.Handle)
	}
	if stored.Tier == nil || *stored.Tier != 12 {
		t.Errorf("Tier = %v, want 12", stored.Tier)
	}
	if stored.LastTierSyncAt == nil || !stored.LastTierSyncAt.Equal(synced) {
		t.Errorf("LastTierSyncAt = %v, want %v", stored.LastTierSyncAt, synced)
	}
}

func TestRegisterHandle_OracleFailureKeepsPriorTier(t *testing.T) {
	svc, users, o := newTestIdentityService(t)
	u := users.seed(intPtr(7))
	o.err = apperror.OracleUnavailable("fetch profile", errors.New("connection refused"))

	_, err := svc.RegisterHandle(asUser(u.ID), "kim")
	if !errors.Is(err, apperror.ErrOracleUnavailable) {
		t.Fatalf("error = %v, want ErrOracleUnavailable", err)
	}

	stored, _ := users.GetUserByID(context.Background(), u.ID)
	if stored.Tier == nil || *stored.Tier != 7 {
		t.Errorf("Tier = %v, want untouched 7", stored.Tier)
	}
	if stored.Handle != nil {
		t.Errorf("Handle = %q, want unset", *stored.Handle)
	}
}

func TestRegisterHandle_Validation(t *testing.T) {
	svc, users, o := newTestIdentityService(t)
	u := users.seed(nil)

	for _, handle := range []string{"", "   ", "has space", "semi;colon", "tag:dp", string(make([]byte, 41))} {
		_, err := svc.RegisterHandle(asUser(u.ID), handle)
		if !errors.Is(err, apperror.ErrInvalidArgument) {
			t.Errorf("RegisterHandle(%q) error = %v, want ErrInvalidArgument", handle, err)
		}
	}
	if len(o.lookups) != 0 {
		t.Errorf("oracle called %d times for invalid handles", len(o.lookups))
	}
}

func TestRegisterHandle_Unauthorized(t *testing.T) {
	svc, _, o := newTestIdentityService(t)

	_, err := svc.RegisterHandle(context.Background(), "kim")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
	if len(o.lookups) != 0 {
		t.Error("oracle called before authorization")
	}
}
