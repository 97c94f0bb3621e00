package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/chaperone-app/chaperone-api/cache"
	"github.com/chaperone-app/chaperone-api/generator"
	"github.com/chaperone-app/chaperone-api/middleware"
	"github.com/chaperone-app/chaperone-api/models"
	"github.com/chaperone-app/chaperone-api/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var errCacheDown = errors.New("cache unreachable")

// fakeCache is an in-memory cache.Cache with failure injection.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string) cache.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return cache.Result{State: cache.StateFailed, Err: errCacheDown}
	}
	value, ok := f.data[key]
	if !ok {
		return cache.Result{State: cache.StateMiss}
	}
	return cache.Result{State: cache.StateHit, Value: value}
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errCacheDown
	}
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errCacheDown
	}
	delete(f.data, key)
	return nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func (f *fakeCache) put(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = []byte(value)
}

func (f *fakeCache) snapshot(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.data[key])
}

type stubGenerator struct {
	options []generator.Option
	err     error
	calls   int
}

func (s *stubGenerator) Generate(ctx context.Context, word string, n int) ([]generator.Option, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.options, nil
}

func transientOptions() []generator.Option {
	return []generator.Option{
		{Label: "TRANSIENT", Meaning: "fleeting", Correct: true},
		{Label: "permanent", Meaning: "lasting forever"},
		{Label: "static", Meaning: "unchanging"},
	}
}

func newTestAPI(t *testing.T) (*API, *fakeCache, *stubGenerator) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Vocabulary{}, &models.Association{}, &models.Option{}))

	fc := newFakeCache()
	gen := &stubGenerator{options: transientOptions()}
	api := &API{
		Store:     store.New(db),
		Cache:     fc,
		Generator: gen,
		Logger:    zap.NewNop(),
		JWTSecret: "test-secret",
	}
	return api, fc, gen
}

func withUser(user *models.User, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), user)))
	}
}

// testMux wires the association routes with a pre-authenticated user so
// PathValue resolution matches production routing.
func testMux(api *API, user *models.User) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /associations/", withUser(user, api.CreateAssociation))
	mux.HandleFunc("GET /associations/", withUser(user, api.GetAssociations))
	mux.HandleFunc("GET /associations/{id}", withUser(user, api.GetAssociationByID))
	mux.HandleFunc("PUT /associations/{id}/correct", withUser(user, api.MarkCorrect))
	mux.HandleFunc("PUT /associations/{id}/incorrect", withUser(user, api.MarkIncorrect))
	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createUser(t *testing.T, api *API, email string) *models.User {
	t.Helper()
	user := &models.User{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "hash", IsActive: true}
	require.NoError(t, api.Store.CreateUser(context.Background(), user))
	return user
}

func createVocabulary(t *testing.T, api *API, word, meaning string) *models.Vocabulary {
	t.Helper()
	vocab := &models.Vocabulary{Word: word, Meaning: meaning}
	require.NoError(t, api.Store.CreateVocabulary(context.Background(), vocab))
	return vocab
}

func createPendingAssociation(t *testing.T, api *API, userID, vocabID uint) *models.Association {
	t.Helper()
	association := &models.Association{Status: models.StatusPending, UserID: userID, VocabularyID: vocabID}
	options := []models.Option{
		{Option: "TRANSIENT", Meaning: "fleeting", IsCorrect: true},
		{Option: "permanent", Meaning: "lasting forever"},
		{Option: "static", Meaning: "unchanging"},
	}
	require.NoError(t, api.Store.CreateAssociation(context.Background(), association, options))
	return association
}
