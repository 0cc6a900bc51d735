package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/mailer"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUploadsDisabled = errors.New("avatar uploads not configured")
)

// Service orchestrates profile reads and mutations against the user store.
// Redis, GCS, Elasticsearch and the notification publisher are optional side
// channels; a nil client disables that channel without failing requests.
type Service struct {
	Repo         repo.UserRepository
	Redis        *redis.Client
	CacheTTL     time.Duration
	GCS          *storage.Client
	GCSBucket    string
	ES           *elasticsearch.Client
	ESUsersIndex string
	Notify       *helpers.RabbitPublisher
	Logger       *logrus.Logger
}

func NewService(r repo.UserRepository, rdb *redis.Client, cacheTTL time.Duration, gcs *storage.Client, gcsBucket string, es *elasticsearch.Client, esUsersIndex string, notify *helpers.RabbitPublisher, logger *logrus.Logger) *Service {
	return &Service{
		Repo:         r,
		Redis:        rdb,
		CacheTTL:     cacheTTL,
		GCS:          gcs,
		GCSBucket:    gcsBucket,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Notify:       notify,
		Logger:       logger,
	}
}

func profileKey(userID int64) string {
	return "user:profile:" + strconv.FormatInt(userID, 10)
}

// loadActive fetches the user and hides deactivated rows from every
// profile operation: a deactivated account's token resolves to not-found.
func (s *Service) loadActive(ctx context.Context, userID int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// GetProfile returns the public projection, read through the redis cache
// when one is configured.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*entity.Profile, error) {
	if s.Redis != nil {
		var cached entity.Profile
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, profileKey(userID), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	u, err := s.loadActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := u.Projection()
	s.cacheProfile(ctx, p)
	return p, nil
}

type UpdateProfileInput struct {
	Username string
	Email    string
	Password string
}

// UpdateProfile applies the provided fields. Username and email go through a
// differs-then-lookup pre-check; the store's unique constraints stay the
// authority, so a racing duplicate still comes back as a conflict error.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*entity.Profile, error) {
	u, err := s.loadActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" && in.Username != u.Username {
		if _, err := s.Repo.GetByUsername(ctx, in.Username); err == nil {
			return nil, repo.ErrUsernameTaken
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		u.Username = in.Username
	}

	if in.Email != "" && in.Email != u.Email {
		if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
			return nil, repo.ErrEmailTaken
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		u.Email = in.Email
	}

	passwordChanged := false
	if in.Password != "" {
		hash, err := helpers.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
		passwordChanged = true
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.invalidateProfile(ctx, userID)
	s.indexUser(ctx, u)
	if passwordChanged {
		s.notify(ctx, u, mailer.EventPasswordChanged)
	} else {
		s.notify(ctx, u, mailer.EventProfileUpdated)
	}
	return u.Projection(), nil
}

// UpdateAvatar stores an already shape-checked avatar URL.
func (s *Service) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) (*entity.Profile, error) {
	u, err := s.loadActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.AvatarURL = avatarURL
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.invalidateProfile(ctx, userID)
	s.indexUser(ctx, u)
	s.notify(ctx, u, mailer.EventAvatarUpdated)
	return u.Projection(), nil
}

// UploadAvatar uploads an avatar image to GCS and points the profile at it.
func (s *Service) UploadAvatar(ctx context.Context, userID int64, r io.Reader, filename, contentType string) (*entity.Profile, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, ErrUploadsDisabled
	}

	u, err := s.loadActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", strconv.FormatInt(userID, 10), uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, err
	}

	u.AvatarURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.invalidateProfile(ctx, userID)
	s.indexUser(ctx, u)
	s.notify(ctx, u, mailer.EventAvatarUpdated)
	return u.Projection(), nil
}

// DeactivateAccount verifies the caller's current password and soft-deletes
// the row. The username and email stay reserved by the unique constraints.
func (s *Service) DeactivateAccount(ctx context.Context, userID int64, password string) error {
	u, err := s.loadActive(ctx, userID)
	if err != nil {
		return err
	}

	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return ErrInvalidPassword
	}

	if err := s.Repo.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	u.IsActive = false
	s.invalidateProfile(ctx, userID)
	s.indexUser(ctx, u)
	s.notify(ctx, u, mailer.EventAccountDeactivated)
	return nil
}

func (s *Service) cacheProfile(ctx context.Context, p *entity.Profile) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, profileKey(p.ID), p, s.CacheTTL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", p.ID).Warn("profile cache write failed")
	}
}

func (s *Service) invalidateProfile(ctx context.Context, userID int64) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, profileKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("profile cache invalidation failed")
	}
}

// indexUser keeps the external profile index current. Best effort only.
func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"avatar_url": u.AvatarURL,
		"is_active":  u.IsActive,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESUsersIndex,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// notify publishes a fire-and-forget notification job for the email worker.
func (s *Service) notify(ctx context.Context, u *entity.User, event string) {
	if s.Notify == nil {
		return
	}
	job := mailer.EmailJob{
		To:    u.Email,
		Event: event,
		Data:  map[string]any{"Username": u.Username},
	}
	if err := s.Notify.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("event", event).Warn("notification publish failed")
	}
}
