package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"campusevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHasher is a deterministic PasswordHasher for tests.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }
func (fakeHasher) Hash(salt, password string) (string, error) {
	return "hash:" + salt + ":" + password, nil
}
func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer returns a token embedding the user ID and roles.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("jwt:%s:%v", userID, roles), nil
}

func newAuthFixture() (*fakeUserRepo, *fakeRoleRepo, *fakeEmailService, domain.AuthService) {
	ur := newFakeUserRepo()
	roles := newFakeRoleRepo()
	emails := &fakeEmailService{}
	svc := NewAuthService(ur, roles, fakeHasher{}, &fakeTokenIssuer{}, emails, time.Hour, testLogger())
	return ur, roles, emails, svc
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("success assigns the student role by default", func(t *testing.T) {
		ur, _, _, svc := newAuthFixture()

		user, err := svc.SignUp(ctx, "Jo@Campus.EDU", "password123", "Jo", "")
		require.NoError(t, err)
		assert.Equal(t, "jo@campus.edu", user.Email)
		require.NotEmpty(t, user.ID)
		require.Len(t, ur.roles[user.ID], 1)
		assert.Equal(t, "role-student", ur.roles[user.ID][0])
	})

	t.Run("host role is allowed", func(t *testing.T) {
		ur, _, _, svc := newAuthFixture()

		user, err := svc.SignUp(ctx, "host@campus.edu", "password123", "Sam", "host")
		require.NoError(t, err)
		require.Len(t, ur.roles[user.ID], 1)
		assert.Equal(t, "role-host", ur.roles[user.ID][0])
	})

	t.Run("admin role falls back to student", func(t *testing.T) {
		ur, _, _, svc := newAuthFixture()

		user, err := svc.SignUp(ctx, "sneaky@campus.edu", "password123", "Sneaky", "admin")
		require.NoError(t, err)
		require.Len(t, ur.roles[user.ID], 1)
		assert.Equal(t, "role-student", ur.roles[user.ID][0])
	})

	t.Run("invalid email", func(t *testing.T) {
		_, _, _, svc := newAuthFixture()
		_, err := svc.SignUp(ctx, "not-an-email", "password123", "Jo", "")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("short password", func(t *testing.T) {
		_, _, _, svc := newAuthFixture()
		_, err := svc.SignUp(ctx, "jo@campus.edu", "short", "Jo", "")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, _, _, svc := newAuthFixture()

		_, err := svc.SignUp(ctx, "jo@campus.edu", "password123", "Jo", "")
		require.NoError(t, err)
		_, err = svc.SignUp(ctx, "jo@campus.edu", "password123", "Jo Again", "")
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns a token carrying roles", func(t *testing.T) {
		_, roles, _, svc := newAuthFixture()
		user, err := svc.SignUp(ctx, "jo@campus.edu", "password123", "Jo", "host")
		require.NoError(t, err)
		roles.byUserID[user.ID] = []*domain.Role{{ID: "role-host", Code: domain.RoleHost}}

		token, err := svc.Login(ctx, "jo@campus.edu", "password123")
		require.NoError(t, err)
		assert.Contains(t, token, user.ID)
		assert.Contains(t, token, domain.RoleHost)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, _, svc := newAuthFixture()
		_, err := svc.Login(ctx, "missing@campus.edu", "password123")
		require.EqualError(t, err, "invalid credentials")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, _, svc := newAuthFixture()
		_, err := svc.SignUp(ctx, "jo@campus.edu", "password123", "Jo", "")
		require.NoError(t, err)

		_, err = svc.Login(ctx, "jo@campus.edu", "wrong-password")
		require.EqualError(t, err, "invalid credentials")
	})
}
