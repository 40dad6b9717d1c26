package serve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nt "shgrid/entity"
	"shgrid/grid"
	"shgrid/query"
	"shgrid/store/duck"
	"shgrid/testutil"
)

type fakeStore struct {
	mu   sync.Mutex
	rows []map[string]any
	last query.Input
	fail error
}

func newFakeStore(total int) *fakeStore {

	fs := &fakeStore{}
	for i := 1; i <= total; i++ {
		fs.rows = append(fs.rows, map[string]any{"row_id": float64(i), "name": "row " + strconv.Itoa(i)})
	}
	return fs
}

func (fs *fakeStore) Query(ctx context.Context, in query.Input) (rows []map[string]any, count int, err error) {

	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.last = in
	if fs.fail != nil {
		return nil, 0, fs.fail
	}
	for _, srt := range in.Sorters {
		if srt.Column != "name" && srt.Column != "row_id" {
			return nil, 0, errors.Wrapf(duck.ErrUnknownColumn, "%q", srt.Column)
		}
	}

	end := min(in.Offset+in.Limit, len(fs.rows))
	rows = []map[string]any{}
	if in.Offset < end {
		rows = fs.rows[in.Offset:end]
	}
	return rows, len(fs.rows), nil
}

func (fs *fakeStore) GetRow(ctx context.Context, id string) (row map[string]any, err error) {

	idx, err := strconv.Atoi(id)
	if err != nil || idx < 1 || idx > len(fs.rows) {
		return nil, errors.Wrapf(duck.ErrNotFound, "id %q", id)
	}
	return fs.rows[idx-1], nil
}

func (fs *fakeStore) lastInput() query.Input {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.last
}

func newTestServer(t *testing.T, store Store) *httptest.Server {
	t.Helper()

	cfg := &Config{}
	srv := httptest.NewServer(cfg.New(store, testutil.NewLogger(t)).Router())
	t.Cleanup(srv.Close)
	return srv
}

func getJson(t *testing.T, target string, val any) *http.Response {
	t.Helper()

	resp, err := http.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(val))
	return resp
}

func TestServer_GetRows(t *testing.T) {
	store := newFakeStore(12)
	srv := newTestServer(t, store)

	t.Run("page", func(t *testing.T) {
		params := query.Builders{}.Params(query.Input{
			Filters: []nt.FilterPair{{Column: "name", Text: "row"}},
			Sorters: []nt.Sorter{{Column: "name", Asc: true}},
			Offset:  10,
			Limit:   5,
		})

		var page grid.Page[map[string]any]
		resp := getJson(t, srv.URL+"/rows?"+params.Encode(), &page)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "12", resp.Header.Get(grid.TotalCountHeader))
		assert.Equal(t, 12, page.Count)
		assert.Len(t, page.Data, 2)
		assert.Equal(t, "row 11", page.Data[0]["name"])

		assert.Equal(t, query.Input{
			Filters: []nt.FilterPair{{Column: "name", Text: "row"}},
			Sorters: []nt.Sorter{{Column: "name", Asc: true}},
			Offset:  10,
			Limit:   5,
		}, store.lastInput())
	})

	t.Run("default limit", func(t *testing.T) {
		var page grid.Page[map[string]any]
		getJson(t, srv.URL+"/rows", &page)

		assert.Len(t, page.Data, nt.DefaultLimit)
		assert.Equal(t, nt.DefaultLimit, store.lastInput().Limit)
	})

	for _, tc := range []struct {
		name  string
		query string
	}{
		{name: "bad sort json", query: "sort=%5B"},
		{name: "negative offset", query: "offset=-5"},
		{name: "limit too big", query: "limit=5000"},
		{name: "unknown sort column", query: url.Values{"sort": {`[{"columnId":"age","isAsc":true}]`}}.Encode()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var ge nt.GridError
			resp := getJson(t, srv.URL+"/rows?"+tc.query, &ge)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, http.StatusBadRequest, ge.Code)
			assert.NotEmpty(t, ge.Message)
		})
	}

	t.Run("store failure", func(t *testing.T) {
		failing := newFakeStore(1)
		failing.fail = errors.New("disk on fire")
		failSrv := newTestServer(t, failing)

		var ge nt.GridError
		resp := getJson(t, failSrv.URL+"/rows", &ge)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "disk on fire", ge.Message)
	})
}

func TestServer_GetRow(t *testing.T) {
	srv := newTestServer(t, newFakeStore(3))

	var row map[string]any
	resp := getJson(t, srv.URL+"/rows/2", &row)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "row 2", row["name"])

	var ge nt.GridError
	resp = getJson(t, srv.URL+"/rows/9", &ge)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, ge.Code)
}

func TestServer_WithServerGrid(t *testing.T) {
	srv := newTestServer(t, newFakeStore(12))

	cfg := &grid.Config[map[string]any]{
		URL:      srv.URL + "/rows",
		Columns:  []nt.Column{{ID: "row_id"}, {ID: "name"}},
		Limit:    5,
		Debounce: time.Minute,
	}
	sg, err := cfg.New(context.Background(), testutil.NewLogger(t))
	require.NoError(t, err)
	defer sg.Close()

	require.NoError(t, sg.SetPage(2))
	sg.Rebuild(context.Background())

	state := sg.State()
	assert.Nil(t, state.Err)
	assert.Equal(t, 12, state.Count)
	require.Len(t, state.Data, 2)
	assert.Equal(t, "row 11", state.Data[0]["name"])
	assert.Equal(t, 3, sg.PageCount())

	require.NoError(t, sg.ToggleSort("name"))
	require.NoError(t, sg.SetSorters(nt.Sorter{Column: "name"}))
	sg.Rebuild(context.Background())
	assert.Nil(t, sg.State().Err)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`+"\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())

	var reloads atomic.Int32
	done := make(chan error)
	go func() {
		done <- Watch(ctx, path, 100*time.Millisecond, func(context.Context) error {
			reloads.Add(1)
			return nil
		}, nil)
	}()

	// give the watcher a moment to register
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))
	for range 3 {
		require.NoError(t, os.WriteFile(path, []byte(`{"a":2}`+"\n"), 0644))
	}

	require.Eventually(t, func() bool {
		return reloads.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())

	cancel()
	assert.NoError(t, <-done)
}
