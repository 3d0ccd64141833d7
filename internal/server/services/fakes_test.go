package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/catalog"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/users"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// journal records cross-fake call order.
type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) add(e string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

// --- credentials.Repository ---

type fakeCredentials struct {
	mu      sync.Mutex
	j       *journal
	tokens  map[string]models.SpotifyToken
	prefs   map[models.PreferenceKind][]models.Preference
	getErr  error
	saveErr error
	updErr  error
	upsErr  error
	prefErr error

	saves, updates, upserts, deletes int
	upserted                         []models.PreferenceItem
}

func newFakeCredentials(j *journal) *fakeCredentials {
	return &fakeCredentials{j: j, tokens: map[string]models.SpotifyToken{}, prefs: map[models.PreferenceKind][]models.Preference{}}
}

func (f *fakeCredentials) put(t models.SpotifyToken) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[t.OwnerID] = t
}

func (f *fakeCredentials) stored(ownerID string) (models.SpotifyToken, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[ownerID]
	return t, ok
}

func (f *fakeCredentials) GetToken(_ context.Context, ownerID string) (*models.SpotifyToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.j.add("get")
	if f.getErr != nil {
		return nil, f.getErr
	}
	t, ok := f.tokens[ownerID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (f *fakeCredentials) SaveToken(_ context.Context, ownerID string, t *models.SpotifyToken) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.j.add("save")
	f.saves++
	if f.saveErr != nil {
		return false, f.saveErr
	}
	f.tokens[ownerID] = *t
	return true, nil
}

func (f *fakeCredentials) UpdateToken(_ context.Context, ownerID string, t *models.SpotifyToken) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.j.add("update")
	f.updates++
	if f.updErr != nil {
		return false, f.updErr
	}
	old, ok := f.tokens[ownerID]
	if !ok {
		return false, nil
	}
	nt := *t
	nt.CreatedAt = old.CreatedAt
	f.tokens[ownerID] = nt
	return true, nil
}

func (f *fakeCredentials) TokenExists(_ context.Context, ownerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return false, f.getErr
	}
	_, ok := f.tokens[ownerID]
	return ok, nil
}

func (f *fakeCredentials) DeleteToken(_ context.Context, ownerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	_, ok := f.tokens[ownerID]
	delete(f.tokens, ownerID)
	return ok, nil
}

func (f *fakeCredentials) GetPreferences(_ context.Context, ownerID string, kind models.PreferenceKind) ([]models.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prefErr != nil {
		return nil, f.prefErr
	}
	return append([]models.Preference{}, f.prefs[kind]...), nil
}

func (f *fakeCredentials) UpsertPreferences(_ context.Context, ownerID string, kind models.PreferenceKind, items []models.PreferenceItem) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsErr != nil {
		return false, f.upsErr
	}
	f.upserted = append(f.upserted, items...)
	return true, nil
}

// --- catalog.Repository ---

type fakeCatalog struct {
	genres  []models.Genre
	artists map[int64][]models.Artist
	err     error
}

func (f *fakeCatalog) ListGenres(context.Context) ([]models.Genre, error) {
	return f.genres, f.err
}

func (f *fakeCatalog) ListArtistsByGenre(_ context.Context, genreID int64) ([]models.Artist, error) {
	return f.artists[genreID], f.err
}

// --- users.Repository ---

type fakeUsers struct {
	users     map[string]models.User
	history   []string
	err       error
	createErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]models.User{}}
}

func (f *fakeUsers) GetUser(_ context.Context, ownerID string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[ownerID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (f *fakeUsers) UserExists(_ context.Context, ownerID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.users[ownerID]
	return ok, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	u.ID = int64(len(f.users) + 1)
	u.RegisteredAt = testNow
	f.users[u.OwnerID] = *u
	f.history = append(f.history, u.OwnerID+":"+models.UserCreated)
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, ownerID string, p models.ProfileUpdate) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	u, ok := f.users[ownerID]
	if !ok {
		return false, nil
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Age != nil {
		u.Age = p.Age
	}
	if p.Bio != nil {
		u.Bio = p.Bio
	}
	if p.FavoriteGenres != nil {
		u.FavoriteGenres = p.FavoriteGenres
	}
	if p.ProfilePictureURL != nil {
		u.ProfilePictureURL = p.ProfilePictureURL
	}
	f.users[ownerID] = u
	f.history = append(f.history, ownerID+":"+models.UserProfileUpdated)
	return true, nil
}

// --- repomanager.RepositoryManager ---

type fakeRepoManager struct {
	creds *fakeCredentials
	cat   *fakeCatalog
	users *fakeUsers
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Credentials(*dbx.Gateway) credentials.Repository {
	return m.creds
}
func (m *fakeRepoManager) Catalog(*dbx.Gateway) catalog.Repository {
	return m.cat
}
func (m *fakeRepoManager) Users(*dbx.Gateway) users.Repository {
	return m.users
}

// --- TokenBroker ---

type fakeBroker struct {
	mu sync.Mutex
	j  *journal

	exchangeErr error
	refreshErr  error
	// rotated is returned as the new refresh token; empty means omitted.
	rotated     string
	valid       bool
	profileErr  error
	playlistErr error

	exchanges, refreshes, validates, profiles, playlists int
	lastLimit, lastOffset                                int
	lastAccess                                           string
}

func (b *fakeBroker) ExchangeCode(_ context.Context, code, redirectURI string) (*models.SpotifyToken, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.j.add("exchange")
	b.exchanges++
	if b.exchangeErr != nil {
		return nil, b.exchangeErr
	}
	return &models.SpotifyToken{
		AccessToken:  "AT1",
		RefreshToken: "RT1",
		TokenType:    "Bearer",
		ExpiresAt:    testNow.Add(3600 * time.Second),
	}, nil
}

func (b *fakeBroker) Refresh(_ context.Context, refreshToken string) (*models.SpotifyToken, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.j.add("refresh:" + refreshToken)
	b.refreshes++
	if b.refreshErr != nil {
		return nil, b.refreshErr
	}
	return &models.SpotifyToken{
		AccessToken:  "AT2",
		RefreshToken: b.rotated,
		TokenType:    "Bearer",
		ExpiresAt:    testNow.Add(time.Hour),
	}, nil
}

func (b *fakeBroker) Validate(_ context.Context, accessToken string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.j.add("validate")
	b.validates++
	b.lastAccess = accessToken
	return b.valid
}

func (b *fakeBroker) FetchProfile(_ context.Context, accessToken string) (*models.SpotifyProfile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.j.add("profile")
	b.profiles++
	b.lastAccess = accessToken
	if b.profileErr != nil {
		return nil, b.profileErr
	}
	return &models.SpotifyProfile{ID: "spotify-user", DisplayName: "Ann"}, nil
}

func (b *fakeBroker) FetchPlaylists(_ context.Context, accessToken string, limit, offset int) (*models.PlaylistPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.j.add("playlists")
	b.playlists++
	b.lastAccess = accessToken
	b.lastLimit, b.lastOffset = limit, offset
	if b.playlistErr != nil {
		return nil, b.playlistErr
	}
	return &models.PlaylistPage{
		Items:  []models.Playlist{{ID: "p1", Name: "Morning"}},
		Total:  1,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// --- RefreshLocker ---

type fakeLocker struct {
	err      error
	onLock   func()
	locks    int
	releases int
}

func (l *fakeLocker) Lock(context.Context, string) (func() error, error) {
	l.locks++
	if l.err != nil {
		return nil, l.err
	}
	if l.onLock != nil {
		l.onLock()
	}
	return func() error {
		l.releases++
		return nil
	}, nil
}

var errBoom = errors.New("boom")
