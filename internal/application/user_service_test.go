package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

// fakeUserRepo is an in-memory UserRepository enforcing the same uniqueness
// rules as the Postgres constraints, including reserved names on
// deactivated rows.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int64]*entity.User{}}
}

func clone(u *entity.User) *entity.User {
	c := *u
	return &c
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.users {
		if other.Username == u.Username {
			return repo.ErrUsernameTaken
		}
		if other.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.IsActive = true
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	f.users[u.ID] = clone(u)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return clone(u), nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return clone(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	for id, other := range f.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username {
			return repo.ErrUsernameTaken
		}
		if other.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	u.UpdatedAt = time.Now().UTC()
	f.users[u.ID] = clone(u)
	return nil
}

func (f *fakeUserRepo) Deactivate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || !u.IsActive {
		return repo.ErrNotFound
	}
	u.IsActive = false
	u.UpdatedAt = time.Now().UTC()
	return nil
}

var _ repo.UserRepository = (*fakeUserRepo)(nil)

func newTestService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()
	f := newFakeUserRepo()
	return NewService(f, nil, 0, nil, "", nil, "", nil, nil), f
}

func seedUser(t *testing.T, f *fakeUserRepo, username, email, password string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	u := &entity.User{Username: username, Email: email, PasswordHash: hash}
	require.NoError(t, f.Create(context.Background(), u))
	return u
}

func TestGetProfile(t *testing.T) {
	svc, f := newTestService(t)
	u := seedUser(t, f, "alice", "alice@example.com", "password123")

	p, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.Equal(t, u.CreatedAt, p.CreatedAt)
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProfile(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile_UsernameConflict(t *testing.T) {
	svc, f := newTestService(t)
	alice := seedUser(t, f, "alice", "alice@example.com", "password123")
	seedUser(t, f, "bob", "bob@example.com", "password123")

	_, err := svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Username: "bob"})
	assert.ErrorIs(t, err, repo.ErrUsernameTaken)

	stored, err := f.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
}

func TestUpdateProfile_EmailConflict(t *testing.T) {
	svc, f := newTestService(t)
	alice := seedUser(t, f, "alice", "alice@example.com", "password123")
	seedUser(t, f, "bob", "bob@example.com", "password123")

	_, err := svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Email: "bob@example.com"})
	assert.ErrorIs(t, err, repo.ErrEmailTaken)
}

func TestUpdateProfile_SameValuesNoConflict(t *testing.T) {
	svc, f := newTestService(t)
	alice := seedUser(t, f, "alice", "alice@example.com", "password123")

	// Re-submitting the current username/email is not a conflict.
	p, err := svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{
		Username: "alice",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
}

func TestUpdateProfile_ChangesFields(t *testing.T) {
	svc, f := newTestService(t)
	alice := seedUser(t, f, "alice", "alice@example.com", "password123")

	p, err := svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{
		Username: "alice2",
		Email:    "alice2@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", p.Username)
	assert.Equal(t, "alice2@example.com", p.Email)

	stored, err := f.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", stored.Username)
	assert.True(t, !stored.UpdatedAt.Before(stored.CreatedAt))
}

func TestUpdateProfile_PasswordRehashed(t *testing.T) {
	svc, f := newTestService(t)
	alice := seedUser(t, f, "alice", "alice@example.com", "password123")
	oldHash := alice.PasswordHash

	_, err := svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Password: "newpass123"})
	require.NoError(t, err)

	stored, err := f.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, stored.PasswordHash)
	assert.NotEqual(t, "newpass123", stored.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, "newpass123"))
	assert.False(t, helpers.CompareHashAndPassword(stored.PasswordHash, "password123"))
}

func TestUpdateAvatar_Idempotent(t *testing.T) {
	svc, f := newTestService(t)
	alice := seedUser(t, f, "alice", "alice@example.com", "password123")

	const url = "https://cdn.example.com/avatars/alice.png"

	p, err := svc.UpdateAvatar(context.Background(), alice.ID, url)
	require.NoError(t, err)
	assert.Equal(t, url, p.AvatarURL)

	first, err := f.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	p, err = svc.UpdateAvatar(context.Background(), alice.ID, url)
	require.NoError(t, err)
	assert.Equal(t, url, p.AvatarURL)

	second, err := f.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, url, second.AvatarURL)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestDeactivateAccount_WrongPassword(t *testing.T) {
	svc, f := newTestService(t)
	alice := seedUser(t, f, "alice", "alice@example.com", "password123")

	err := svc.DeactivateAccount(context.Background(), alice.ID, "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	stored, err := f.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}

func TestDeactivateAccount(t *testing.T) {
	svc, f := newTestService(t)
	alice := seedUser(t, f, "alice", "alice@example.com", "password123")

	require.NoError(t, svc.DeactivateAccount(context.Background(), alice.ID, "password123"))

	stored, err := f.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// A deactivated account is invisible to every profile operation.
	_, err = svc.GetProfile(context.Background(), alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	err = svc.DeactivateAccount(context.Background(), alice.ID, "password123")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeactivatedUsernameStaysReserved(t *testing.T) {
	svc, f := newTestService(t)
	alice := seedUser(t, f, "alice", "alice@example.com", "password123")
	bob := seedUser(t, f, "bob", "bob@example.com", "password123")

	require.NoError(t, svc.DeactivateAccount(context.Background(), bob.ID, "password123"))

	// The deactivated row keeps its names reserved.
	_, err := svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Username: "bob"})
	assert.ErrorIs(t, err, repo.ErrUsernameTaken)
}

func TestUploadAvatar_Disabled(t *testing.T) {
	svc, f := newTestService(t)
	alice := seedUser(t, f, "alice", "alice@example.com", "password123")

	_, err := svc.UploadAvatar(context.Background(), alice.ID, nil, "a.png", "image/png")
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}
