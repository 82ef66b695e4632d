package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-launcher/api"
	"search-launcher/kv"
	"search-launcher/profile"
	"search-launcher/search"
	"search-launcher/tab"
)

type fixture struct {
	srv   *httptest.Server
	gw    *kv.MemoryGateway
	store *profile.Store
	tabs  *tab.Manager

	mu     sync.Mutex
	opened []string
}

func (f *fixture) open(u string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, u)
	return nil
}

func (f *fixture) openedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

func newTestServer(t *testing.T, opts ...tab.Option) *fixture {
	t.Helper()
	f := &fixture{gw: kv.NewMemoryGateway()}
	f.store = profile.NewStore(f.gw)
	_, err := f.store.Load(context.Background())
	require.NoError(t, err)

	f.tabs = tab.NewManager(append([]tab.Option{tab.WithOpener(f.open)}, opts...)...)
	d := &search.Dispatcher{
		Store: f.store,
		Host: search.FallbackHost{
			Primary:   f.tabs,
			Secondary: search.DesktopHost{Open: f.open},
		},
	}
	f.srv = httptest.NewServer(api.RegisterRoutes(f.store, d, f.tabs, nil))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestListProfilesSeeded(t *testing.T) {
	f := newTestServer(t)

	resp := f.do(t, http.MethodGet, "/api/profiles", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[profile.State](t, resp)
	require.Len(t, st.Profiles, 3)
	assert.Equal(t, "frontend-heavy", st.ActiveProfile)
}

func TestCreateProfile(t *testing.T) {
	f := newTestServer(t)

	resp := f.do(t, http.MethodPost, "/api/profiles", `{"name":"  Go  ","keywords":" golang, grpc "}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	p := decode[profile.Profile](t, resp)
	assert.Len(t, p.ID, 12)
	assert.Equal(t, "Go", p.Name)
	assert.Equal(t, "golang, grpc", p.Keywords)
	assert.Equal(t, profile.Palette[3], p.Color)

	assert.Len(t, f.store.State().Profiles, 4)
}

func TestSaveProfileInvalid(t *testing.T) {
	f := newTestServer(t)
	_, setsBefore, _ := f.gw.Calls()

	resp := f.do(t, http.MethodPost, "/api/profiles", `{"name":"   ","keywords":"go"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/profiles", "not-json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, setsAfter, _ := f.gw.Calls()
	assert.Equal(t, setsBefore, setsAfter)
}

func TestPutProfileReplacesInPlace(t *testing.T) {
	f := newTestServer(t)

	resp := f.do(t, http.MethodPut, "/api/profiles/backend-heavy",
		`{"id":"ignored","name":"Backend","keywords":"go, rust","color":"#EF4444"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	st := f.store.State()
	require.Len(t, st.Profiles, 3)
	assert.Equal(t, "backend-heavy", st.Profiles[1].ID)
	assert.Equal(t, "go, rust", st.Profiles[1].Keywords)
	assert.Equal(t, "#EF4444", st.Profiles[1].Color)
}

func TestGetProfile(t *testing.T) {
	f := newTestServer(t)

	resp := f.do(t, http.MethodGet, "/api/profiles/fullstack", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Full Stack", decode[profile.Profile](t, resp).Name)

	resp = f.do(t, http.MethodGet, "/api/profiles/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteProfile(t *testing.T) {
	f := newTestServer(t)

	resp := f.do(t, http.MethodDelete, "/api/profiles/frontend-heavy", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "backend-heavy", f.store.State().ActiveProfile)

	resp = f.do(t, http.MethodDelete, "/api/profiles/frontend-heavy", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEditingLifecycle(t *testing.T) {
	f := newTestServer(t)

	resp := f.do(t, http.MethodGet, "/api/profiles/editing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/profiles/new", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	candidate := decode[profile.Profile](t, resp)
	assert.Len(t, candidate.ID, 12)
	assert.Empty(t, candidate.Name)

	resp = f.do(t, http.MethodGet, "/api/profiles/editing", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, candidate.ID, decode[profile.Profile](t, resp).ID)

	resp = f.do(t, http.MethodDelete, "/api/profiles/editing", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, editing := f.store.Editing()
	assert.False(t, editing)
	assert.Len(t, f.store.State().Profiles, 3)

	resp = f.do(t, http.MethodPost, "/api/profiles/fullstack/edit", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fullstack", decode[profile.Profile](t, resp).ID)

	resp = f.do(t, http.MethodPost, "/api/profiles/nope/edit", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveStorageUnavailable(t *testing.T) {
	f := newTestServer(t)
	f.gw.FailSet = true

	resp := f.do(t, http.MethodPost, "/api/profiles", `{"name":"Go","keywords":"golang"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	// The change is kept in memory for this session.
	assert.Len(t, f.store.State().Profiles, 4)
}

func TestPutDeletedProfileRejected(t *testing.T) {
	f := newTestServer(t)

	resp := f.do(t, http.MethodPost, "/api/profiles/fullstack/edit", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.do(t, http.MethodDelete, "/api/profiles/fullstack", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodPut, "/api/profiles/fullstack", `{"name":"Full Stack","keywords":"react, node"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_, ok := f.store.Get("fullstack")
	assert.False(t, ok)
}

func TestPostCandidateFromNew(t *testing.T) {
	f := newTestServer(t)

	resp := f.do(t, http.MethodPost, "/api/profiles/new", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	candidate := decode[profile.Profile](t, resp)

	body := `{"id":"` + candidate.ID + `","name":"QA","keywords":"cypress"}`
	resp = f.do(t, http.MethodPost, "/api/profiles", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, candidate.ID, decode[profile.Profile](t, resp).ID)

	resp = f.do(t, http.MethodPost, "/api/profiles", `{"id":"invented","name":"QA","keywords":"cypress"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutWithoutColorKeepsColor(t *testing.T) {
	f := newTestServer(t)

	resp := f.do(t, http.MethodPut, "/api/profiles/backend-heavy", `{"name":"Backend","keywords":"go"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "#10B981", decode[profile.Profile](t, resp).Color)
}
