// Package store is the Local Store: the offline mirror of everything the
// remote API holds, scoped by (purpose, owner email), plus a few global keys.
//
// Reads of absent keys return defaults, never errors. Writes replace whole
// collections; moves between the active and archive sets are transactional.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskly/internal/client/repositories/records"
	"github.com/dmitrijs2005/taskly/internal/client/repositories/users"
	"github.com/dmitrijs2005/taskly/internal/common"
	"github.com/dmitrijs2005/taskly/internal/cryptox"
	"github.com/dmitrijs2005/taskly/internal/dbx"
	"github.com/rs/xid"
)

// Global metadata keys.
const (
	KeySessionToken    = "session_token"
	KeyCurrentUser     = "current_user"
	KeyRememberedEmail = "remembered_email"
)

type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the xid-based task id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:    db,
		now:   time.Now,
		newID: func() string { return xid.New().String() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) metadataRepo(db dbx.DBTX) metadata.Repository { return metadata.NewSQLiteRepository(db) }
func (s *Store) recordsRepo(db dbx.DBTX) records.Repository   { return records.NewSQLiteRepository(db) }
func (s *Store) usersRepo(db dbx.DBTX) users.Repository       { return users.NewSQLiteRepository(db) }

func getJSON[T any](ctx context.Context, repo records.Repository, key records.Key, def T) (T, error) {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if len(raw) == 0 {
		return def, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return def, fmt.Errorf("decode %s/%s: %w", key.Purpose, key.Owner, err)
	}
	return v, nil
}

func putJSON(ctx context.Context, repo records.Repository, key records.Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return repo.Put(ctx, key, raw)
}

// ---- session & global keys ----

func (s *Store) SessionToken(ctx context.Context) (string, error) {
	v, err := s.metadataRepo(s.db).Get(ctx, KeySessionToken)
	return string(v), err
}

func (s *Store) CurrentUser(ctx context.Context) (*models.User, error) {
	raw, err := s.metadataRepo(s.db).Get(ctx, KeyCurrentUser)
	if err != nil || len(raw) == 0 {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	return &u, nil
}

// SaveSession persists the token and user snapshot together. An empty token
// (offline login) removes any stale token.
func (s *Store) SaveSession(ctx context.Context, token string, u models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.metadataRepo(tx)
		if token == "" {
			if err := repo.Delete(ctx, KeySessionToken); err != nil {
				return err
			}
		} else if err := repo.Set(ctx, KeySessionToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyCurrentUser, raw)
	})
}

// SetCurrentUser refreshes the user snapshot, keeping the token.
func (s *Store) SetCurrentUser(ctx context.Context, u models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.metadataRepo(s.db).Set(ctx, KeyCurrentUser, raw)
}

func (s *Store) ClearSession(ctx context.Context) error {
	return s.metadataRepo(s.db).Delete(ctx, KeySessionToken, KeyCurrentUser)
}

func (s *Store) RememberedEmail(ctx context.Context) (string, error) {
	v, err := s.metadataRepo(s.db).Get(ctx, KeyRememberedEmail)
	return string(v), err
}

// SetRememberedEmail stores email; an empty email forgets it.
func (s *Store) SetRememberedEmail(ctx context.Context, email string) error {
	if email == "" {
		return s.metadataRepo(s.db).Delete(ctx, KeyRememberedEmail)
	}
	return s.metadataRepo(s.db).Set(ctx, KeyRememberedEmail, []byte(common.NormalizeEmail(email)))
}

// ---- user directory ----

// SaveUser adds a user with a fresh verifier for password.
// It fails with common.ErrorAlreadyExists for a taken email.
func (s *Store) SaveUser(ctx context.Context, profile models.User, password string) error {
	salt, verifier := cryptox.NewVerifier(password)
	profile.Email = common.NormalizeEmail(profile.Email)
	return s.usersRepo(s.db).Create(ctx, users.LocalUser{Profile: profile, Salt: salt, Verifier: verifier})
}

// MirrorUser creates or replaces the local copy of a remotely authenticated user.
func (s *Store) MirrorUser(ctx context.Context, profile models.User, password string) error {
	salt, verifier := cryptox.NewVerifier(password)
	profile.Email = common.NormalizeEmail(profile.Email)
	return s.usersRepo(s.db).Upsert(ctx, users.LocalUser{Profile: profile, Salt: salt, Verifier: verifier})
}

// FindUserByEmail returns nil when the user is unknown.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*users.LocalUser, error) {
	u, err := s.usersRepo(s.db).FindByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return u, err
}

// UpdateUser merges patch into the stored profile. When email names the
// current user the session snapshot is refreshed too.
func (s *Store) UpdateUser(ctx context.Context, email string, patch models.ProfilePatch) (models.User, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (models.User, error) {
		repo := s.usersRepo(tx)
		u, err := repo.FindByEmail(ctx, email)
		if err != nil {
			return models.User{}, err
		}
		patch.Apply(&u.Profile)
		if err := repo.UpdateProfile(ctx, u.Profile); err != nil {
			return models.User{}, err
		}
		if err := s.refreshCurrentUser(ctx, tx, u.Profile); err != nil {
			return models.User{}, err
		}
		return u.Profile, nil
	})
}

func (s *Store) refreshCurrentUser(ctx context.Context, tx dbx.DBTX, p models.User) error {
	repo := s.metadataRepo(tx)
	raw, err := repo.Get(ctx, KeyCurrentUser)
	if err != nil || len(raw) == 0 {
		return err
	}
	var cur models.User
	if err := json.Unmarshal(raw, &cur); err != nil || common.NormalizeEmail(cur.Email) != common.NormalizeEmail(p.Email) {
		return nil
	}
	next, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return repo.Set(ctx, KeyCurrentUser, next)
}

// VerifyPassword checks password against the stored verifier.
// It returns common.ErrorNotFound for unknown users and
// common.ErrorUnauthorized for a wrong password.
func (s *Store) VerifyPassword(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.usersRepo(s.db).FindByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if !cryptox.CheckVerifier(password, u.Salt, u.Verifier) {
		return models.User{}, common.ErrorUnauthorized
	}
	return u.Profile, nil
}

// SetPassword replaces the stored verifier.
func (s *Store) SetPassword(ctx context.Context, email, password string) error {
	salt, verifier := cryptox.NewVerifier(password)
	return s.usersRepo(s.db).UpdateVerifier(ctx, email, salt, verifier)
}

// ---- per-user collections ----

func key(p records.Purpose, owner string) records.Key {
	return records.Key{Purpose: p, Owner: owner}
}

// InitUserData creates the empty collections a fresh user starts with and
// the default avatar. Existing values are left alone.
func (s *Store) InitUserData(ctx context.Context, owner string, displayName string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.recordsRepo(tx)
		present, err := repo.Purposes(ctx, owner)
		if err != nil {
			return err
		}
		has := make(map[records.Purpose]bool, len(present))
		for _, p := range present {
			has[p] = true
		}
		for _, p := range []records.Purpose{records.PurposeTasks, records.PurposeArchive, records.PurposeReminders} {
			if !has[p] {
				if err := putJSON(ctx, repo, key(p, owner), []any{}); err != nil {
					return err
				}
			}
		}
		if !has[records.PurposeProfileImage] {
			return putJSON(ctx, repo, key(records.PurposeProfileImage, owner), DefaultAvatarURL(displayName))
		}
		return nil
	})
}

// DefaultAvatarURL is the generated avatar shown until the user uploads one.
func DefaultAvatarURL(name string) string {
	if name == "" {
		name = "User"
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=FFC107&color=2C1810&size=200"
}

func (s *Store) Tasks(ctx context.Context, owner string) ([]models.Task, error) {
	return getJSON(ctx, s.recordsRepo(s.db), key(records.PurposeTasks, owner), []models.Task{})
}

func (s *Store) SaveTasks(ctx context.Context, owner string, tasks []models.Task) error {
	return putJSON(ctx, s.recordsRepo(s.db), key(records.PurposeTasks, owner), nonNil(tasks))
}

// Archive returns archived tasks newest-archived first.
func (s *Store) Archive(ctx context.Context, owner string) ([]models.Task, error) {
	tasks, err := getJSON(ctx, s.recordsRepo(s.db), key(records.PurposeArchive, owner), []models.Task{})
	if err != nil {
		return nil, err
	}
	models.SortArchived(tasks)
	return tasks, nil
}

func (s *Store) SaveArchive(ctx context.Context, owner string, tasks []models.Task) error {
	return putJSON(ctx, s.recordsRepo(s.db), key(records.PurposeArchive, owner), nonNil(tasks))
}

func (s *Store) Reminders(ctx context.Context, owner string) ([]models.ReminderEntry, error) {
	return getJSON(ctx, s.recordsRepo(s.db), key(records.PurposeReminders, owner), []models.ReminderEntry{})
}

func (s *Store) SaveReminders(ctx context.Context, owner string, entries []models.ReminderEntry) error {
	if entries == nil {
		entries = []models.ReminderEntry{}
	}
	return putJSON(ctx, s.recordsRepo(s.db), key(records.PurposeReminders, owner), entries)
}

// ProfileImage falls back to the generated avatar when nothing is stored.
func (s *Store) ProfileImage(ctx context.Context, owner, displayName string) (string, error) {
	return getJSON(ctx, s.recordsRepo(s.db), key(records.PurposeProfileImage, owner), DefaultAvatarURL(displayName))
}

func (s *Store) SetProfileImage(ctx context.Context, owner, ref string) error {
	return putJSON(ctx, s.recordsRepo(s.db), key(records.PurposeProfileImage, owner), ref)
}

// Theme defaults to light.
func (s *Store) Theme(ctx context.Context, owner string) (models.Theme, error) {
	return getJSON(ctx, s.recordsRepo(s.db), key(records.PurposeTheme, owner), models.ThemeLight)
}

func (s *Store) SetTheme(ctx context.Context, owner string, theme models.Theme) error {
	return putJSON(ctx, s.recordsRepo(s.db), key(records.PurposeTheme, owner), theme)
}

func (s *Store) TutorialSeen(ctx context.Context, owner string) (bool, error) {
	return getJSON(ctx, s.recordsRepo(s.db), key(records.PurposeTutorialSeen, owner), false)
}

func (s *Store) SetTutorialSeen(ctx context.Context, owner string, seen bool) error {
	return putJSON(ctx, s.recordsRepo(s.db), key(records.PurposeTutorialSeen, owner), seen)
}

func nonNil(tasks []models.Task) []models.Task {
	if tasks == nil {
		return []models.Task{}
	}
	return tasks
}
