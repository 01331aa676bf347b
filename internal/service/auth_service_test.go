package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aischeduler/scheduler-backend/internal/config"
	"github.com/aischeduler/scheduler-backend/internal/repository"
)

type authUserRepo struct {
	seq    int
	users  map[string]*repository.User
	tokens map[string]*repository.RefreshToken
}

func newAuthUserRepo() *authUserRepo {
	return &authUserRepo{
		users:  map[string]*repository.User{},
		tokens: map[string]*repository.RefreshToken{},
	}
}

func (r *authUserRepo) Create(_ context.Context, u *repository.User) error {
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt = time.Now()
	r.users[u.ID] = u
	return nil
}

func (r *authUserRepo) FindByID(_ context.Context, id string) (*repository.User, error) {
	return r.users[id], nil
}

func (r *authUserRepo) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *authUserRepo) Update(_ context.Context, _ *repository.User) error { return nil }

func (r *authUserRepo) CreateRefreshToken(_ context.Context, t *repository.RefreshToken) error {
	r.tokens[t.Token] = t
	return nil
}

func (r *authUserRepo) FindRefreshToken(_ context.Context, token string) (*repository.RefreshToken, error) {
	return r.tokens[token], nil
}

func (r *authUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *authUserRepo) DeleteExpiredRefreshTokens(_ context.Context) (int, error) {
	deleted := 0
	for token, rt := range r.tokens {
		if time.Now().After(rt.ExpiresAt) {
			delete(r.tokens, token)
			deleted++
		}
	}
	return deleted, nil
}

func newAuthTestService() (AuthService, *authUserRepo) {
	repo := newAuthUserRepo()
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     1,
		RefreshExpiry: 7,
	}
	return NewAuthService(cfg, repo), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthTestService()

	user, access, refresh, err := svc.Register(context.Background(), "Demo", "Demo@Example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "demo@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.Password == "password123" {
		t.Error("password stored in plaintext")
	}
	if access == "" || refresh == "" {
		t.Error("missing tokens")
	}

	loggedIn, _, _, err := svc.Login(context.Background(), "demo@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Error("login returned a different user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthTestService()

	svc.Register(context.Background(), "Demo", "demo@example.com", "password123")
	if _, _, _, err := svc.Register(context.Background(), "Again", "demo@example.com", "password456"); err != ErrUserExists {
		t.Errorf("got %v, want ErrUserExists", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthTestService()

	svc.Register(context.Background(), "Demo", "demo@example.com", "password123")
	if _, _, _, err := svc.Login(context.Background(), "demo@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
	if _, _, _, err := svc.Login(context.Background(), "nobody@example.com", "password123"); err != ErrInvalidCredentials {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc, _ := newAuthTestService()

	user, access, _, err := svc.Register(context.Background(), "Demo", "demo@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := svc.ValidateToken(access)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	userID, err := svc.GetUserIDFromToken(token)
	if err != nil {
		t.Fatalf("GetUserIDFromToken: %v", err)
	}
	if userID != user.ID {
		t.Errorf("got %q, want %q", userID, user.ID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthTestService()
	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, repo := newAuthTestService()

	_, _, refresh, err := svc.Register(context.Background(), "Demo", "demo@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	access2, refresh2, err := svc.RefreshToken(context.Background(), refresh)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if access2 == "" || refresh2 == "" || refresh2 == refresh {
		t.Error("refresh must rotate the token")
	}

	// old token is spent
	if _, _, err := svc.RefreshToken(context.Background(), refresh); err != ErrInvalidToken {
		t.Errorf("reused token: got %v, want ErrInvalidToken", err)
	}
	if _, ok := repo.tokens[refresh]; ok {
		t.Error("spent token still stored")
	}
}

func TestRefreshTokenExpired(t *testing.T) {
	svc, repo := newAuthTestService()

	_, _, refresh, _ := svc.Register(context.Background(), "Demo", "demo@example.com", "password123")
	repo.tokens[refresh].ExpiresAt = time.Now().Add(-time.Minute)

	if _, _, err := svc.RefreshToken(context.Background(), refresh); err != ErrInvalidToken {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestLogoutRemovesRefreshToken(t *testing.T) {
	svc, repo := newAuthTestService()

	_, _, refresh, _ := svc.Register(context.Background(), "Demo", "demo@example.com", "password123")
	if err := svc.Logout(context.Background(), refresh); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := repo.tokens[refresh]; ok {
		t.Error("token survived logout")
	}
}
