package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/items/internal/client"
	"github.com/idilsaglam/items/internal/model"
	"github.com/idilsaglam/items/internal/store/sqlitestore"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context) ([]model.Item, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Item)
	return items, args.Error(1)
}

func (m *MockStore) Create(ctx context.Context, in model.NewItem) (model.Item, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Item), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Close() error { return m.Called().Error(0) }

func quietLogger() *log.Logger { return log.New(io.Discard) }

func newSQLiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := sqlitestore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	srv := httptest.NewServer(New(st, quietLogger()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func TestHealth(t *testing.T) {
	srv := newSQLiteServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestItemsLifecycle(t *testing.T) {
	srv := newSQLiteServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/items", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	resp, body = do(t, http.MethodPost, srv.URL+"/api/items", `{"name":"Book","description":"A novel"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Regexp(t, `^\{"id":\d+,"name":"Book"\}\n?$`, string(body), "id stays a JSON number")
	var created createResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Book", created.Name)
	assert.NotEmpty(t, created.ID)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/items", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []model.Item
	require.NoError(t, json.Unmarshal(body, &items))
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
	assert.Equal(t, "A novel", items[0].Description)
	_, err := time.Parse(time.RFC3339Nano, items[0].CreatedAt.String())
	assert.NoError(t, err)

	resp, body = do(t, http.MethodDelete, srv.URL+"/api/items/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"deleted":`+created.ID.String()+`}`, string(body))

	// Deleting again still answers 200.
	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/items/"+created.ID.String(), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateDescriptionOptional(t *testing.T) {
	srv := newSQLiteServer(t)
	resp, _ := do(t, http.MethodPost, srv.URL+"/api/items", `{"name":"Lamp"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body := do(t, http.MethodGet, srv.URL+"/api/items", "")
	var items []model.Item
	require.NoError(t, json.Unmarshal(body, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "", items[0].Description)
}

func TestCreateValidation(t *testing.T) {
	srv := newSQLiteServer(t)
	cases := map[string]string{
		"missing name": `{"description":"x"}`,
		"blank name":   `{"name":"   "}`,
		"too long":     `{"name":"` + strings.Repeat("a", MaxNameLen+1) + `"}`,
		"not json":     `name=Book`,
		"array":        `[]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, b := do(t, http.MethodPost, srv.URL+"/api/items", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, string(b), `"error"`)
		})
	}
}

func TestDeleteBadIDIsNotFound(t *testing.T) {
	srv := newSQLiteServer(t)
	resp, _ := do(t, http.MethodDelete, srv.URL+"/api/items/abc", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newSQLiteServer(t)
	resp, _ := do(t, http.MethodPut, srv.URL+"/api/items", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newSQLiteServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/items", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStoreErrorsAre500(t *testing.T) {
	st := new(MockStore)
	st.On("List", mock.Anything).Return(nil, errors.New("disk on fire"))
	st.On("Create", mock.Anything, model.NewItem{Name: "x"}).Return(model.Item{}, errors.New("disk on fire"))
	st.On("Delete", mock.Anything, int64(4)).Return(false, errors.New("disk on fire"))
	h := New(st, quietLogger()).Handler()

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/items", ""},
		{http.MethodPost, "/api/items", `{"name":"x"}`},
		{http.MethodDelete, "/api/items/4", ""},
	} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, tc.method)
		assert.NotContains(t, rr.Body.String(), "disk on fire")
	}
	st.AssertExpectations(t)
}

func TestClientAgainstServer(t *testing.T) {
	srv := newSQLiteServer(t)
	c := client.New(srv.URL)
	ctx := context.Background()

	require.NoError(t, c.Create(ctx, model.NewItem{Name: "Book", Description: "A novel"}))
	require.NoError(t, c.Create(ctx, model.NewItem{Name: "Lamp"}))
	items, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Lamp", items[0].Name, "newest first")

	require.NoError(t, c.Delete(ctx, items[0].ID))
	items, err = c.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Book", items[0].Name)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	st := new(MockStore)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(st, quietLogger()).Serve(ctx, ln) }()

	resp, _ := do(t, http.MethodGet, "http://"+ln.Addr().String()+"/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

