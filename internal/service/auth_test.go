package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/N-Srikar/Athena/internal/errs"
	"github.com/N-Srikar/Athena/internal/model"
	"github.com/N-Srikar/Athena/pkg/auth"
)

type fakeUserRepo struct {
	fakeRepo

	users  map[string]model.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]model.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return model.User{}, errs.ErrAlreadyExists
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.Email] = user
	return user, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return user, nil
}

func TestService_RegisterLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Second)

	repo := newFakeUserRepo()
	svc := NewService(repo, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return start }

	user, err := svc.Register(ctx, model.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@athena.io",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleMember, user.Role)
	require.NotEqual(t, "correct-horse", user.PasswordHash)

	_, err = svc.Register(ctx, model.RegisterRequest{
		Name:     "Alice again",
		Email:    "alice@athena.io",
		Password: "correct-horse",
	})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	resp, err := svc.Login(ctx, model.AuthRequest{Email: "alice@athena.io", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	claims := &auth.Claims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(t *jwt.Token) (interface{}, error) {
		return auth.JWTKey, nil
	})
	require.NoError(t, err)
	require.Equal(t, "alice@athena.io", claims.Profile.Username)
	require.Equal(t, string(model.RoleMember), claims.Profile.Role)
	require.Equal(t, start.Add(tokenTTL).Unix(), claims.ExpiresAt.Unix())

	_, err = svc.Login(ctx, model.AuthRequest{Email: "alice@athena.io", Password: "wrong"})
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)

	_, err = svc.Login(ctx, model.AuthRequest{Email: "nobody@athena.io", Password: "whatever"})
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestService_CreateLibrarian(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newFakeUserRepo()
	svc := NewService(repo, nil, nil, zap.NewNop())

	resp, err := svc.CreateLibrarian(ctx, model.CreateLibrarianRequest{
		Name:  "Morgan",
		Email: "morgan@athena.io",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleLibrarian, resp.Librarian.Role)
	require.Len(t, resp.Password, 12)

	// The generated password actually opens the account.
	login, err := svc.Login(ctx, model.AuthRequest{Email: "morgan@athena.io", Password: resp.Password})
	require.NoError(t, err)
	require.NotEmpty(t, login.AccessToken)
}
