package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"crypto-tracker/src/helpers"
	"crypto-tracker/src/models"
	"crypto-tracker/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeStore struct {
	records  []models.MCryptocurrency
	fetchErr error
}

func (f *fakeStore) Initialize() error { return nil }

func (f *fakeStore) UpsertCryptocurrencies([]models.MCryptocurrency) error { return nil }

func (f *fakeStore) FetchAll() ([]models.MCryptocurrency, error) { return f.records, f.fetchErr }

func (f *fakeStore) FetchByIDs([]string) ([]models.MCryptocurrency, error) { return f.records, nil }

func (f *fakeStore) SaveFavorites([]string) error { return nil }

func (f *fakeStore) LoadFavorites() ([]string, error) { return nil, nil }

func (f *fakeStore) CleanupStale(time.Duration) error { return nil }

func (f *fakeStore) Close() error { return nil }

// -----------------------------------------------------------------------------

type fakeCatalog struct {
	searchResults []models.MCryptocurrency
	searchErr     error
	history       []models.MPricePoint
	historyErr    error
	lastDays      string
}

func (f *fakeCatalog) FetchPage(context.Context, int, models.MSortOption) ([]models.MCryptocurrency, error) {
	return nil, nil
}

func (f *fakeCatalog) FetchByIDs(context.Context, []string) ([]models.MCryptocurrency, error) {
	return nil, nil
}

func (f *fakeCatalog) Search(_ context.Context, query string) ([]models.MCryptocurrency, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func (f *fakeCatalog) FetchPriceHistory(_ context.Context, coinID, days string) ([]models.MPricePoint, error) {
	f.lastDays = days
	return f.history, f.historyErr
}

// -----------------------------------------------------------------------------

type fakeFavorites struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newFakeFavorites() *fakeFavorites {
	return &fakeFavorites{ids: make(map[string]struct{})}
}

func (f *fakeFavorites) Add(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids[id] = struct{}{}
	return nil
}

func (f *fakeFavorites) Remove(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, id)
	return nil
}

func (f *fakeFavorites) IsFavorite(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ids[id]
	return ok
}

func (f *fakeFavorites) List() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	return out
}

func (f *fakeFavorites) Subscribe() (<-chan struct{}, func()) {
	return make(chan struct{}), func() {}
}

// -----------------------------------------------------------------------------

type fakeConnectivity struct{ online bool }

func (f *fakeConnectivity) Start(context.Context) error { return nil }

func (f *fakeConnectivity) Stop() error { return nil }

func (f *fakeConnectivity) IsConnected() bool { return f.online }

func (f *fakeConnectivity) Subscribe() (<-chan bool, func()) {
	return make(chan bool), func() {}
}

// -----------------------------------------------------------------------------

type fakeStatus struct {
	offline bool
	loading bool
	banner  bool
}

func (f *fakeStatus) IsOffline() bool { return f.offline }

func (f *fakeStatus) IsLoading() bool { return f.loading }

func (f *fakeStatus) ShowOfflineMessage() bool { return f.banner }

// -----------------------------------------------------------------------------

type serverFixture struct {
	srv     *APIServer
	store   *fakeStore
	catalog *fakeCatalog
	net     *fakeConnectivity
	status  *fakeStatus
}

func newFixture() *serverFixture {
	cfg := &models.MConfig{
		Name:     "test",
		Host:     "127.0.0.1",
		Port:     8765,
		LogLevel: "ERROR",
	}

	f := &serverFixture{
		store:   &fakeStore{},
		catalog: &fakeCatalog{},
		net:     &fakeConnectivity{online: true},
		status:  &fakeStatus{},
	}

	f.srv = NewAPIServer(cfg, f.store, f.catalog, newFakeFavorites(), f.net, utils.NewAlertHistory(10), f.status)
	return f
}

func (f *serverFixture) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	f.srv.engine.ServeHTTP(w, req)
	return w
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestGetCryptocurrencies(t *testing.T) {
	f := newFixture()
	f.store.records = []models.MCryptocurrency{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", CurrentPrice: 50000},
	}

	w := f.do(http.MethodGet, "/api/cryptocurrencies")
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.MCryptocurrency
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "bitcoin", got[0].ID)
}

// -----------------------------------------------------------------------------

func TestGetCryptocurrenciesStorageError(t *testing.T) {
	f := newFixture()
	f.store.fetchErr = helpers.Wrap("db locked", helpers.ErrTransport)

	w := f.do(http.MethodGet, "/api/cryptocurrencies")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// -----------------------------------------------------------------------------

func TestSearchErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", helpers.Wrap("empty query", helpers.ErrInvalidInput), http.StatusBadRequest},
		{"not found", helpers.Wrap("no match", helpers.ErrNotFound), http.StatusNotFound},
		{"rate limited", helpers.Wrap("429", helpers.ErrRateLimited), http.StatusTooManyRequests},
		{"transport", helpers.Wrap("500", helpers.ErrTransport), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.catalog.searchErr = tt.err

			w := f.do(http.MethodGet, "/api/cryptocurrencies/search?query=bit")
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

// -----------------------------------------------------------------------------

func TestSearchSuccess(t *testing.T) {
	f := newFixture()
	f.catalog.searchResults = []models.MCryptocurrency{{ID: "bitcoin"}}

	w := f.do(http.MethodGet, "/api/cryptocurrencies/search?query=bitcoin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bitcoin")
}

// -----------------------------------------------------------------------------

func TestPriceHistoryValidatesDays(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/api/cryptocurrencies/bitcoin/history?days=90")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// -----------------------------------------------------------------------------

func TestPriceHistoryDefaultsToWeek(t *testing.T) {
	f := newFixture()
	ts := time.Now().UTC()
	f.catalog.history = []models.MPricePoint{{Index: 0, Price: 50000, Timestamp: &ts}}

	w := f.do(http.MethodGet, "/api/cryptocurrencies/bitcoin/history")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", f.catalog.lastDays)
}

// -----------------------------------------------------------------------------

func TestFavoritesEndpoints(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/favorites/bitcoin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bitcoin")

	w = f.do(http.MethodGet, "/api/favorites")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bitcoin")

	w = f.do(http.MethodDelete, "/api/favorites/bitcoin")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/favorites")
	assert.NotContains(t, w.Body.String(), "bitcoin")
}

// -----------------------------------------------------------------------------

func TestRecentAlerts(t *testing.T) {
	f := newFixture()
	f.srv.History.Append(models.MAlert{Title: "first"})
	f.srv.History.Append(models.MAlert{Title: "second"})

	w := f.do(http.MethodGet, "/api/alerts/recent?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "first")
	assert.Contains(t, w.Body.String(), "second")
}

// -----------------------------------------------------------------------------

func TestStatusStates(t *testing.T) {
	withData := []models.MCryptocurrency{{ID: "bitcoin"}}

	tests := []struct {
		name    string
		online  bool
		records []models.MCryptocurrency
		loading bool
		state   string
	}{
		{"online with data", true, withData, false, "ok"},
		{"online still loading", true, nil, true, "loading"},
		{"offline with cache", false, withData, false, "offline_cached"},
		{"offline without data", false, nil, false, "no_data_offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.net.online = tt.online
			f.store.records = tt.records
			f.status.loading = tt.loading

			w := f.do(http.MethodGet, "/api/status")
			require.Equal(t, http.StatusOK, w.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.state, resp["state"])
		})
	}
}
