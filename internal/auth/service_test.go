package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"
)

type fakeAdmins struct {
	byEmail map[string]*models.Admin
	err     error
}

func (f *fakeAdmins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmail[email], nil
}

func (f *fakeAdmins) FindByID(_ context.Context, id string) (*models.Admin, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.byEmail {
		if a.ID.Hex() == id {
			return a, nil
		}
	}
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *fakeAdmins, *models.Admin) {
	t.Helper()
	hash, err := HashPassword("Secret@2025")
	require.NoError(t, err)

	admin := &models.Admin{
		ID:       bson.NewObjectID(),
		Email:    "admin@example.com",
		Password: hash,
		Name:     "Site Admin",
	}
	store := &fakeAdmins{byEmail: map[string]*models.Admin{admin.Email: admin}}
	return NewService(store, NewTokenManager("test-secret", time.Hour)), store, admin
}

func TestAuthenticate_Success(t *testing.T) {
	svc, _, admin := newTestService(t)

	session, err := svc.Authenticate(context.Background(), " admin@example.com ", "Secret@2025")
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: admin.ID.Hex(), Email: admin.Email, Name: admin.Name}, session.Identity)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	id, err := svc.CurrentSession(context.Background(), session.Token)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, session.Identity, *id)
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, wrongPassword := svc.Authenticate(ctx, "admin@example.com", "wrong")
	_, unknownEmail := svc.Authenticate(ctx, "nobody@example.com", "Secret@2025")
	_, emptyInput := svc.Authenticate(ctx, "", "")

	for _, err := range []error{wrongPassword, unknownEmail, emptyInput} {
		assert.ErrorIs(t, err, apperr.ErrAuthenticationFailed)
	}
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.err = errors.New("connection reset")

	_, err := svc.Authenticate(context.Background(), "admin@example.com", "Secret@2025")
	var pe *apperr.PersistenceError
	assert.ErrorAs(t, err, &pe)
}

func TestCurrentSession_NoSession(t *testing.T) {
	svc, store, admin := newTestService(t)
	ctx := context.Background()

	id, err := svc.CurrentSession(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, id)

	id, err = svc.CurrentSession(ctx, "garbage")
	assert.NoError(t, err)
	assert.Nil(t, id)

	session, err := svc.Authenticate(ctx, admin.Email, "Secret@2025")
	require.NoError(t, err)

	delete(store.byEmail, admin.Email)
	id, err = svc.CurrentSession(ctx, session.Token)
	assert.NoError(t, err)
	assert.Nil(t, id, "deleted admin has no session")
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))

	want := &Identity{ID: "1", Email: "a@b.com"}
	assert.Same(t, want, FromContext(WithIdentity(ctx, want)))
}
