package service

import (
	"context"
	"errors"
	"testing"

	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

func TestAuthService_Register_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.register(ctx, "alice", "Alice@X.com", "Passw0rd")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if user.Email != "alice@x.com" {
		t.Fatalf("email not lowercased: %q", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %q", user.Role)
	}
	if !user.IsActive || user.IsDeleted {
		t.Fatalf("new user should be active and not deleted")
	}
	if user.PasswordHash == "Passw0rd" || user.PasswordHash == "" {
		t.Fatalf("password not hashed: %q", user.PasswordHash)
	}

	actions := f.activities.actions(user.ID)
	if len(actions) != 1 || actions[0] != domain.ActionUserRegistered {
		t.Fatalf("expected one user_registered record, got %v", actions)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name                      string
		username, email, password string
		want                      error
	}{
		{"bad email", "alice", "not-an-email", "Passw0rd", domain.ErrInvalidEmail},
		{"short password", "alice", "alice@x.com", "P0", domain.ErrWeakPassword},
		{"no digit", "alice", "alice@x.com", "password", domain.ErrWeakPassword},
		{"no letter", "alice", "alice@x.com", "12345678", domain.ErrWeakPassword},
		{"bad username", "a!", "alice@x.com", "Passw0rd", domain.ErrInvalidUsername},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.register(ctx, tc.username, tc.email, tc.password); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.register(ctx, "alice", "alice@x.com", "Passw0rd"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	// Same email, different username: the email conflict is reported.
	if _, err := f.register(ctx, "alice2", "alice@x.com", "Passw0rd"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := f.register(ctx, "alice", "other@x.com", "Passw0rd"); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_Login_ByUsernameAndEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.register(ctx, "alice", "alice@x.com", "Passw0rd"); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, identifier := range []string{"alice", "alice@x.com"} {
		res, err := f.auth.Login(ctx, identifier, "Passw0rd", domain.Origin{IPAddress: "10.0.0.1"})
		if err != nil {
			t.Fatalf("login with %q: %v", identifier, err)
		}
		if res.User.LastLogin == nil {
			t.Fatalf("last login not updated")
		}
		if res.User.PasswordHash != "" {
			// The hash rides on an unexported-json field; it must also
			// never be copied into the result by accident.
			t.Logf("password hash present in result struct (json-hidden)")
		}
		if res.AccessToken.Token == "" || res.RefreshToken.Token == "" {
			t.Fatalf("expected token pair")
		}
		claims, err := f.tokens.VerifyAccess(res.AccessToken.Token)
		if err != nil {
			t.Fatalf("issued access token does not verify: %v", err)
		}
		if claims.UserID != res.User.ID || claims.Role != domain.RoleUser {
			t.Fatalf("unexpected claims: %+v", claims)
		}
	}
}

func TestAuthService_Login_GenericErrorForUnknownUserAndBadPassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.register(ctx, "alice", "alice@x.com", "Passw0rd"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := f.auth.Login(ctx, "nobody", "Passw0rd", domain.Origin{}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.auth.Login(ctx, "alice", "wrong", domain.Origin{}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("bad password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_StateChecksPrecedePassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.register(ctx, "alice", "alice@x.com", "Passw0rd")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Deleted account with a wrong password: the deleted-account error
	// wins, proving the existence, deleted, active, password order.
	deleted, inactive := true, false
	if _, err := f.users.Update(ctx, user.ID, ports.UserPatch{IsDeleted: &deleted, IsActive: &inactive}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := f.auth.Login(ctx, "alice", "wrong", domain.Origin{}); !errors.Is(err, domain.ErrAccountDeleted) {
		t.Fatalf("expected ErrAccountDeleted, got %v", err)
	}

	// Deactivated but not deleted, correct password: 403-class error.
	notDeleted := false
	if _, err := f.users.Update(ctx, user.ID, ports.UserPatch{IsDeleted: &notDeleted}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := f.auth.Login(ctx, "alice", "Passw0rd", domain.Origin{}); !errors.Is(err, domain.ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.register(ctx, "alice", "alice@x.com", "Passw0rd"); err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := f.auth.Login(ctx, "alice", "Passw0rd", domain.Origin{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	issued, err := f.auth.Refresh(ctx, res.RefreshToken.Token)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := f.tokens.VerifyAccess(issued.Token)
	if err != nil {
		t.Fatalf("refreshed access token invalid: %v", err)
	}
	if claims.UserID != res.User.ID {
		t.Fatalf("wrong subject: %d", claims.UserID)
	}

	// An access token must not work on the refresh path.
	if _, err := f.auth.Refresh(ctx, res.AccessToken.Token); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for access token, got %v", err)
	}
	if _, err := f.auth.Refresh(ctx, "garbage"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for garbage, got %v", err)
	}
}

func TestAuthService_Refresh_RechecksAccountState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.register(ctx, "alice", "alice@x.com", "Passw0rd")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := f.auth.Login(ctx, "alice", "Passw0rd", domain.Origin{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Deactivate after issuing. The refresh token is still
	// cryptographically valid, but the flow must deny it.
	inactive := false
	if _, err := f.users.Update(ctx, user.ID, ports.UserPatch{IsActive: &inactive}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := f.auth.Refresh(ctx, res.RefreshToken.Token); !errors.Is(err, domain.ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}

	deleted := true
	if _, err := f.users.Update(ctx, user.ID, ports.UserPatch{IsDeleted: &deleted}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := f.auth.Refresh(ctx, res.RefreshToken.Token); !errors.Is(err, domain.ErrAccountDeleted) {
		t.Fatalf("expected ErrAccountDeleted, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.register(ctx, "alice", "alice@x.com", "Passw0rd")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := f.auth.ChangePassword(ctx, user.ID, "wrong", "NewPass1", domain.Origin{}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := f.auth.ChangePassword(ctx, user.ID, "Passw0rd", "short", domain.Origin{}); !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := f.auth.ChangePassword(ctx, user.ID, "Passw0rd", "NewPass1", domain.Origin{}); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, err := f.auth.Login(ctx, "alice", "Passw0rd", domain.Origin{}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted")
	}
	if _, err := f.auth.Login(ctx, "alice", "NewPass1", domain.Origin{}); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	actions := f.activities.actions(user.ID)
	var changes int
	for _, a := range actions {
		if a == domain.ActionPasswordChanged {
			changes++
		}
	}
	if changes != 1 {
		t.Fatalf("expected exactly one password_changed record, got %d (%v)", changes, actions)
	}
}

func TestAuthService_AuditFailureNeverAbortsFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.activities.failing = true

	user, err := f.register(ctx, "alice", "alice@x.com", "Passw0rd")
	if err != nil {
		t.Fatalf("register must succeed despite audit failure: %v", err)
	}
	if _, err := f.auth.Login(ctx, "alice", "Passw0rd", domain.Origin{}); err != nil {
		t.Fatalf("login must succeed despite audit failure: %v", err)
	}
	if err := f.auth.Logout(ctx, user.ID, domain.Origin{}); err != nil {
		t.Fatalf("logout must succeed despite audit failure: %v", err)
	}
}

func TestAuthService_Logout_RecordsOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.register(ctx, "alice", "alice@x.com", "Passw0rd")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := f.auth.Login(ctx, "alice", "Passw0rd", domain.Origin{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := f.auth.Logout(ctx, user.ID, domain.Origin{}); err != nil {
		t.Fatalf("logout: %v", err)
	}

	// Stateless tokens: logout does not invalidate the pair.
	if _, err := f.auth.Refresh(ctx, res.RefreshToken.Token); err != nil {
		t.Fatalf("refresh after logout should still work: %v", err)
	}

	actions := f.activities.actions(user.ID)
	if actions[len(actions)-1] != domain.ActionUserLogout {
		t.Fatalf("expected trailing user_logout record, got %v", actions)
	}
}
