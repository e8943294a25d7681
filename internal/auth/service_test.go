package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/davidrenteria/storefront-backend/pkg/auth"
	"github.com/davidrenteria/storefront-backend/pkg/auth/session"
	"github.com/davidrenteria/storefront-backend/pkg/config"
	"github.com/davidrenteria/storefront-backend/pkg/db/models"
	"github.com/davidrenteria/storefront-backend/pkg/enums"
	pkgerrors "github.com/davidrenteria/storefront-backend/pkg/errors"
	"github.com/davidrenteria/storefront-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	byEmail     map[string]*models.User
	byID        map[uuid.UUID]*models.User
	createErr   error
	lastLoginID uuid.UUID
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (s *stubUserRepo) add(user *models.User) {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()
	s.add(user)
	return user, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, _ time.Time) error {
	s.lastLoginID = id
	return nil
}

type stubSessionManager struct {
	refreshByAccessID map[string]string
	revoked           []string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{refreshByAccessID: map[string]string{}}
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.refreshByAccessID[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, refreshToken string) (string, string, error) {
	stored, ok := s.refreshByAccessID[oldAccessID]
	if !ok || stored != refreshToken {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.refreshByAccessID, oldAccessID)
	newID := session.NewAccessID()
	newToken := "refresh-" + newID
	s.refreshByAccessID[newID] = newToken
	return newID, newToken, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.refreshByAccessID, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "storefront-test",
		ExpirationMinutes:      30,
		RefreshTokenTTLMinutes: 120,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)
	return svc
}

func TestRegisterCreatesCustomer(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	svc := newTestService(t, repo, newStubSessionManager())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ada Lovelace",
		Email:    "  Ada@Example.COM ",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", resp.User.Email)
	require.Equal(t, string(enums.RoleCustomer), resp.User.Role)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	stored, err := repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery", stored.PasswordHash)

	ok, err := security.VerifyPassword("correct horse battery", stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	repo.createErr = errDuplicate{}
	svc := newTestService(t, repo, newStubSessionManager())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

type errDuplicate struct{}

func (errDuplicate) Error() string { return "UNIQUE constraint failed: users.email" }

func TestLoginVerifiesPassword(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	sessions := newStubSessionManager()
	svc := newTestService(t, repo, sessions)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, claims.UserID)
	require.Equal(t, enums.RoleCustomer, claims.Role)
	require.Equal(t, claims.UserID, repo.lastLoginID)

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong password",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLoginUnknownEmailUnauthorized(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubUserRepo(), newStubSessionManager())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "anything at all",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLoginInactiveUserRejected(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	svc := newTestService(t, repo, newStubSessionManager())

	hash, err := security.HashPassword("correct horse battery", testPasswordConfig())
	require.NoError(t, err)
	repo.add(&models.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: hash,
		Role:         enums.RoleCustomer,
		IsActive:     false,
	})

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	sessions := newStubSessionManager()
	svc := newTestService(t, repo, sessions)

	reg, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  reg.AccessToken,
		RefreshToken: reg.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)
	require.Equal(t, reg.User.ID, refreshed.User.ID)

	// The old pair is now invalid.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  reg.AccessToken,
		RefreshToken: reg.RefreshToken,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	sessions := newStubSessionManager()
	svc := newTestService(t, newStubUserRepo(), sessions)

	require.NoError(t, svc.Logout(context.Background(), "jti-123"))
	require.Contains(t, sessions.revoked, "jti-123")

	err := svc.Logout(context.Background(), "   ")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
