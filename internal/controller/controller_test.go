package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/items/internal/client"
	"github.com/idilsaglam/items/internal/model"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) List(ctx context.Context) ([]model.Item, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Item)
	return items, args.Error(1)
}

func (m *MockAPI) Create(ctx context.Context, in model.NewItem) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockAPI) Delete(ctx context.Context, id model.ID) error {
	return m.Called(ctx, id).Error(0)
}

// run drives cmd and every follow-up command to completion, feeding each
// message back through Update the way the Bubble Tea loop would.
func run(t *testing.T, c *Controller, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		handled, next := c.Update(msg)
		require.True(t, handled, "unexpected message %T", msg)
		cmd = next
	}
}

type recorded struct {
	Method string
	Path   string
	Body   string
}

// fakeServer serves a scripted collection and records every request.
type fakeServer struct {
	mu       sync.Mutex
	requests []recorded
	items    []model.Item
	listCode int
	postCode int
	listBody string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recorded{Method: r.Method, Path: r.URL.Path, Body: string(b)})

	switch r.Method {
	case http.MethodGet:
		if f.listCode != 0 {
			w.WriteHeader(f.listCode)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if f.listBody != "" {
			_, _ = w.Write([]byte(f.listBody))
			return
		}
		_ = json.NewEncoder(w).Encode(f.items)
	case http.MethodPost:
		if f.postCode != 0 {
			w.WriteHeader(f.postCode)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	case http.MethodDelete:
		_, _ = w.Write([]byte(`{"deleted":1}`))
	}
}

func (f *fakeServer) recorded() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.requests...)
}

func newHTTPController(t *testing.T, f *fakeServer) *Controller {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New(context.Background(), client.New(srv.URL, client.WithHTTPClient(srv.Client())), nil)
}

func TestLoadItems_ReplacesItemsInServerOrder(t *testing.T) {
	f := &fakeServer{items: []model.Item{
		{ID: "2", Name: "b", CreatedAt: "2024-01-02T00:00:00Z"},
		{ID: "1", Name: "a", Description: "first", CreatedAt: "2024-01-01T00:00:00Z"},
	}}
	c := newHTTPController(t, f)

	run(t, c, c.LoadItems())

	st := c.State()
	assert.Equal(t, f.items, st.Items)
	assert.Empty(t, st.ErrorMessage)
	assert.False(t, c.Loading())
}

func TestLoadItems_FailureKeepsItems(t *testing.T) {
	f := &fakeServer{items: []model.Item{{ID: "1", Name: "kept"}}}
	c := newHTTPController(t, f)
	run(t, c, c.LoadItems())

	f.mu.Lock()
	f.listCode = http.StatusInternalServerError
	f.mu.Unlock()
	run(t, c, c.LoadItems())

	st := c.State()
	assert.Equal(t, []model.Item{{ID: "1", Name: "kept"}}, st.Items)
	assert.Equal(t, LoadFailedMessage, st.ErrorMessage)
}

func TestLoadItems_NetworkRejection(t *testing.T) {
	api := new(MockAPI)
	api.On("List", mock.Anything).Return(nil, errors.New("connection refused"))
	c := New(context.Background(), api, nil)

	run(t, c, c.LoadItems())

	st := c.State()
	assert.Empty(t, st.Items)
	assert.NotNil(t, st.Items)
	assert.Equal(t, LoadFailedMessage, st.ErrorMessage)
	api.AssertExpectations(t)
}

func TestLoadItems_SuccessClearsPreviousError(t *testing.T) {
	api := new(MockAPI)
	api.On("List", mock.Anything).Return(nil, errors.New("down")).Once()
	api.On("List", mock.Anything).Return([]model.Item{{ID: "7", Name: "back"}}, nil).Once()
	c := New(context.Background(), api, nil)

	run(t, c, c.LoadItems())
	require.Equal(t, LoadFailedMessage, c.State().ErrorMessage)

	run(t, c, c.LoadItems())
	assert.Empty(t, c.State().ErrorMessage)
	assert.Equal(t, []model.Item{{ID: "7", Name: "back"}}, c.State().Items)
}

func TestLoadItems_StaleResponseDropped(t *testing.T) {
	api := new(MockAPI)
	api.On("List", mock.Anything).Return([]model.Item{{ID: "1", Name: "old"}}, nil).Once()
	api.On("List", mock.Anything).Return([]model.Item{{ID: "2", Name: "new"}}, nil).Once()
	c := New(context.Background(), api, nil)

	first := c.LoadItems()
	second := c.LoadItems()
	require.True(t, c.Loading())

	oldMsg := first()
	newMsg := second()

	// Newer response resolves first; the older one must not overwrite it.
	c.Update(newMsg)
	c.Update(oldMsg)

	assert.Equal(t, []model.Item{{ID: "2", Name: "new"}}, c.State().Items)
	assert.False(t, c.Loading())
}

func TestSubmitNew_BlankNameIsNoop(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		f := &fakeServer{}
		c := newHTTPController(t, f)
		c.SetInputs(name, "x")

		cmd := c.SubmitNew(name, "x")

		assert.Nil(t, cmd, "name %q", name)
		assert.Empty(t, f.recorded())
		st := c.State()
		assert.Equal(t, name, st.NameInput)
		assert.Equal(t, "x", st.DescriptionInput)
	}
}

func TestSubmitNew_CreatesThenReloadsOnce(t *testing.T) {
	f := &fakeServer{items: []model.Item{{ID: "1", Name: "Widget", Description: "desc"}}}
	c := newHTTPController(t, f)
	c.SetInputs("Widget", "desc")

	run(t, c, c.Submit())

	reqs := f.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/api/items", reqs[0].Path)
	assert.JSONEq(t, `{"name":"Widget","description":"desc"}`, reqs[0].Body)
	assert.Equal(t, http.MethodGet, reqs[1].Method)
	assert.Equal(t, "/api/items", reqs[1].Path)

	st := c.State()
	assert.Empty(t, st.NameInput)
	assert.Empty(t, st.DescriptionInput)
	assert.Equal(t, f.items, st.Items)
}

func TestSubmitNew_FailedCreateStillClearsAndReloads(t *testing.T) {
	f := &fakeServer{postCode: http.StatusInternalServerError}
	c := newHTTPController(t, f)
	c.SetInputs("Widget", "desc")

	run(t, c, c.SubmitNew("Widget", "desc"))

	reqs := f.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, http.MethodGet, reqs[1].Method)
	st := c.State()
	assert.Empty(t, st.NameInput)
	assert.Empty(t, st.DescriptionInput)
	assert.Empty(t, st.ErrorMessage)
}

func TestDeleteItem_DeletesThenReloadsOnce(t *testing.T) {
	f := &fakeServer{items: []model.Item{}}
	c := newHTTPController(t, f)

	run(t, c, c.DeleteItem("42"))

	reqs := f.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.Equal(t, "/api/items/42", reqs[0].Path)
	assert.Equal(t, http.MethodGet, reqs[1].Method)
}

func TestDeleteItem_FailureStillReloads(t *testing.T) {
	api := new(MockAPI)
	api.On("Delete", mock.Anything, model.ID("3")).Return(errors.New("boom"))
	api.On("List", mock.Anything).Return([]model.Item{{ID: "3", Name: "still here"}}, nil)
	c := New(context.Background(), api, nil)

	run(t, c, c.DeleteItem("3"))

	assert.Equal(t, []model.Item{{ID: "3", Name: "still here"}}, c.State().Items)
	assert.Empty(t, c.State().ErrorMessage)
	api.AssertNumberOfCalls(t, "List", 1)
	api.AssertExpectations(t)
}

func TestUpdate_IgnoresForeignMessages(t *testing.T) {
	c := New(context.Background(), new(MockAPI), nil)
	handled, cmd := c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, handled)
	assert.Nil(t, cmd)
}

func TestSettle_RunsWholeChain(t *testing.T) {
	f := &fakeServer{items: []model.Item{{ID: "1", Name: "Book"}}}
	c := newHTTPController(t, f)

	c.Settle(tea.Batch(c.SubmitNew("Book", ""), nil))

	reqs := f.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, http.MethodGet, reqs[1].Method)
	assert.Equal(t, f.items, c.State().Items)
	assert.False(t, c.Loading())
}

func TestSettle_NilIsNoop(t *testing.T) {
	c := New(context.Background(), new(MockAPI), nil)
	assert.NotPanics(t, func() { c.Settle(nil) })
}

func TestLoadItems_OpaqueIDsAndTimestamps(t *testing.T) {
	f := &fakeServer{listBody: `[
		{"id":"64b1f0","name":"Book","created_at":1704067200000},
		{"id":1,"name":"Lamp","created_at":"2024-01-01T00:00:00Z"}
	]`}
	c := newHTTPController(t, f)

	run(t, c, c.LoadItems())

	st := c.State()
	assert.Empty(t, st.ErrorMessage)
	assert.Equal(t, []model.Item{
		{ID: "64b1f0", Name: "Book", CreatedAt: "1704067200000"},
		{ID: "1", Name: "Lamp", CreatedAt: "2024-01-01T00:00:00Z"},
	}, st.Items)

	run(t, c, c.DeleteItem(st.Items[0].ID))
	reqs := f.recorded()
	require.Len(t, reqs, 3)
	assert.Equal(t, http.MethodDelete, reqs[1].Method)
	assert.Equal(t, "/api/items/64b1f0", reqs[1].Path)
}
