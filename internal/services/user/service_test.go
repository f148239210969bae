package user

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*service, repositories.AccountRepository) {
	t.Helper()
	db, err := repositories.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() { _ = repositories.Close(db) })

	svc := NewService(repositories.NewUserRepository(db), "INR").(*service)
	svc.cost = bcrypt.MinCost
	return svc, repositories.NewAccountRepository(db)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc, accounts := newTestService(t)

	u, err := svc.Register(ctx, " alice ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "s3cret", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret")))

	acc, err := accounts.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())
	assert.Equal(t, "INR", acc.Currency)

	got, err := svc.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, 1, got.TokenVersion)
}

func TestService_RegisterErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, "bob", "pw")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"missing username", "  ", "pw", ErrInvalidInput},
		{"missing password", "carol", "", ErrInvalidInput},
		{"password too long", "carol", strings.Repeat("x", 73), ErrPasswordLong},
		{"username taken", "bob", "other", ErrUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = svc.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_RegisterWithRole(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	u, err := svc.RegisterWithRole(ctx, "root", "pw", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	u, err = svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)

	_, err = svc.RegisterWithRole(ctx, "mallory", "pw", "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
