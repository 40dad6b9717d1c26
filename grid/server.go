package grid

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"

	nt "shgrid/entity"
	"shgrid/fetch"
	"shgrid/query"
)

// DefaultDebounce is the quiet period before a requested rebuild fires.
const DefaultDebounce = 300 * time.Millisecond

// Config specifies a ServerGrid.
type Config[T any] struct {
	Columns      []nt.Column
	URL          string
	Mapper       Mapper[T]
	FetchOptions fetch.Options
	Sorters      []nt.Sorter
	RowLink      func(row T) string
	Limit        int
	Offset       int
	LimitOptions []int
	Builders     query.Builders
	Selected     map[string]T
	// InitialData settles the grid at construction without a request.
	InitialData *Page[T]
	// InitialLoader resolves the first page in the background; ignored when InitialData is set.
	InitialLoader func(ctx context.Context) (Page[T], error)
	// Debounce defaults to DefaultDebounce when zero.
	Debounce time.Duration
	Listener func()
	Client   *http.Client
	// DiscardStale drops responses from rebuilds superseded by a later one.
	DiscardStale bool
}

// ServerGrid is a grid whose rows are paginated, filtered and sorted by a remote endpoint.
type ServerGrid[T any] struct {
	mu sync.Mutex

	columns   []nt.Column
	sorters   []nt.Sorter
	paginator nt.Paginator
	base      *url.URL
	builders  query.Builders
	mapper    Mapper[T]
	gateway   *fetch.Gateway
	rowLink   func(row T) string
	selected  map[string]T

	debounce     time.Duration
	discardStale bool
	buildOnLoad  bool

	data        []T
	count       int
	totalHeader int
	loading     bool
	err         *nt.GridError

	timer    *time.Timer
	seq      uint64
	listener func()
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	logger nt.Logger
}

// New creates a ServerGrid from config.
// Rebuilds run under a context derived from ctx and are aborted by Close.
func (cfg *Config[T]) New(ctx context.Context, lgr nt.Logger) (sg *ServerGrid[T], err error) {

	if lgr == nil {
		lgr = nt.NopLogger{}
	}

	base, err := url.Parse(cfg.URL)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse grid url")
		return
	}
	if base.Scheme == "" || base.Host == "" {
		err = errors.Errorf("grid url %q is not absolute", cfg.URL)
		return
	}

	err = checkColumns(cfg.Columns)
	if err != nil {
		return
	}

	pgn, err := nt.NewPaginator(cfg.Limit, cfg.Offset, cfg.LimitOptions)
	if err != nil {
		return
	}

	mapper := cfg.Mapper
	if mapper == nil {
		mapper = EnvelopeMapper[T]
	}

	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	if debounce < 0 {
		err = errors.Errorf("debounce must not be negative, got %s", debounce)
		return
	}

	rowLink := cfg.RowLink
	if rowLink == nil {
		rowLink = func(T) string { return "" }
	}

	sorters := slices.Clone(cfg.Sorters)
	if sorters == nil {
		sorters = []nt.Sorter{}
	}

	gridCtx, cancel := context.WithCancel(ctx)

	sg = &ServerGrid[T]{
		columns:      slices.Clone(cfg.Columns),
		sorters:      sorters,
		paginator:    pgn,
		base:         base,
		builders:     cfg.Builders,
		mapper:       mapper,
		gateway:      fetch.New(cfg.Client, cfg.FetchOptions, lgr),
		rowLink:      rowLink,
		selected:     cfg.Selected,
		debounce:     debounce,
		discardStale: cfg.DiscardStale,
		data:         []T{},
		totalHeader:  -1,
		listener:     cfg.Listener,
		ctx:          gridCtx,
		cancel:       cancel,
		logger:       lgr,
	}

	switch {
	case cfg.InitialData != nil:
		sg.data = cfg.InitialData.Data
		if sg.data == nil {
			sg.data = []T{}
		}
		sg.count = cfg.InitialData.Count
		sg.notify()
	case cfg.InitialLoader != nil:
		sg.loading = true
		go sg.loadInitial(cfg.InitialLoader)
	default:
		sg.loading = true
		sg.buildOnLoad = true
	}

	return
}

// State returns a snapshot of the grid.
func (sg *ServerGrid[T]) State() State[T] {

	sg.mu.Lock()
	defer sg.mu.Unlock()

	state := State[T]{
		Data:    slices.Clone(sg.data),
		Count:   sg.count,
		Loading: sg.loading,
	}
	if sg.err != nil {
		ge := *sg.err
		state.Err = &ge
	}

	return state
}

// OnChange replaces the listener.
func (sg *ServerGrid[T]) OnChange(listener func()) {

	sg.mu.Lock()
	defer sg.mu.Unlock()

	sg.listener = listener
}

// BuildData schedules a rebuild after the debounce period, replacing any pending one.
// In-flight requests are left to complete.
func (sg *ServerGrid[T]) BuildData() {

	sg.mu.Lock()
	defer sg.mu.Unlock()

	if sg.closed {
		return
	}

	if sg.timer != nil {
		sg.timer.Stop()
	}
	sg.timer = time.AfterFunc(sg.debounce, func() {
		sg.Rebuild(sg.ctx)
	})
}

// Rebuild fetches the current page now, bypassing the debounce.
// Failures are absorbed into State; the listener is notified when loading starts and when it ends.
func (sg *ServerGrid[T]) Rebuild(ctx context.Context) {

	sg.mu.Lock()
	sg.seq++
	seq := sg.seq
	sg.loading = true
	target := sg.buildQueryURL()
	sg.mu.Unlock()

	sg.notify()

	result := sg.fetch(ctx, target)

	sg.mu.Lock()
	if sg.closed {
		sg.mu.Unlock()
		sg.logger.Info(ctx, "dropping response after close", "url", target)
		return
	}
	if sg.discardStale && seq != sg.seq {
		sg.mu.Unlock()
		sg.logger.Info(ctx, "discarding stale response", "seq", seq, "url", target)
		return
	}
	sg.apply(ctx, result)
	sg.loading = false
	sg.mu.Unlock()

	sg.notify()
}

// BuildQueryURL returns the request url for the current state.
func (sg *ServerGrid[T]) BuildQueryURL() string {

	sg.mu.Lock()
	defer sg.mu.Unlock()

	return sg.buildQueryURL()
}

// SetPage moves to page n and schedules a rebuild.
// There is no upper bound check against Count.
func (sg *ServerGrid[T]) SetPage(n int) (err error) {

	sg.mu.Lock()
	err = sg.paginator.SetPage(n)
	sg.mu.Unlock()

	if err != nil {
		return
	}

	sg.BuildData()
	return
}

// SetLimit changes the page size and schedules a rebuild.
func (sg *ServerGrid[T]) SetLimit(limit int) (err error) {

	sg.mu.Lock()
	err = sg.paginator.SetLimit(limit)
	sg.mu.Unlock()

	if err != nil {
		return
	}

	sg.BuildData()
	return
}

// SetFilter sets the filter text of a column, empty clearing it, and schedules a rebuild.
func (sg *ServerGrid[T]) SetFilter(columnID, text string) (err error) {

	sg.mu.Lock()
	idx, err := columnIndex(sg.columns, columnID)
	if err == nil {
		sg.columns[idx].Filter = text
	}
	sg.mu.Unlock()

	if err != nil {
		return
	}

	sg.BuildData()
	return
}

// SetSorters replaces the sort order and schedules a rebuild.
func (sg *ServerGrid[T]) SetSorters(sorters ...nt.Sorter) (err error) {

	sg.mu.Lock()
	for _, srt := range sorters {
		_, err = columnIndex(sg.columns, srt.Column)
		if err != nil {
			sg.mu.Unlock()
			return
		}
	}
	sg.sorters = append([]nt.Sorter{}, sorters...)
	sg.mu.Unlock()

	sg.BuildData()
	return
}

// ToggleSort cycles a column through ascending, descending and unsorted, then schedules a rebuild.
func (sg *ServerGrid[T]) ToggleSort(columnID string) (err error) {

	sg.mu.Lock()
	_, err = columnIndex(sg.columns, columnID)
	if err == nil {
		sg.sorters = toggleSorter(sg.sorters, columnID)
	}
	sg.mu.Unlock()

	if err != nil {
		return
	}

	sg.BuildData()
	return
}

// Sorters returns a copy of the sort order.
func (sg *ServerGrid[T]) Sorters() []nt.Sorter {

	sg.mu.Lock()
	defer sg.mu.Unlock()

	return slices.Clone(sg.sorters)
}

// Paginator returns a copy of the pagination state.
func (sg *ServerGrid[T]) Paginator() nt.Paginator {

	sg.mu.Lock()
	defer sg.mu.Unlock()

	pgn := sg.paginator
	pgn.LimitOptions = slices.Clone(pgn.LimitOptions)
	return pgn
}

// Page returns the zero-based current page.
func (sg *ServerGrid[T]) Page() int {

	sg.mu.Lock()
	defer sg.mu.Unlock()

	return sg.paginator.Page()
}

// PageCount returns the number of pages, using the last X-Total-Count header when Count is unknown.
func (sg *ServerGrid[T]) PageCount() int {

	sg.mu.Lock()
	defer sg.mu.Unlock()

	count := sg.count
	if count == 0 && sg.totalHeader > 0 {
		count = sg.totalHeader
	}

	return sg.paginator.PageCount(count)
}

// Columns returns a copy of the columns, filters included.
func (sg *ServerGrid[T]) Columns() []nt.Column {

	sg.mu.Lock()
	defer sg.mu.Unlock()

	return slices.Clone(sg.columns)
}

// RowLink returns the link for a row, empty when none is configured.
func (sg *ServerGrid[T]) RowLink(row T) string {
	return sg.rowLink(row)
}

// Selected returns the selection map as given; it is owned by the caller.
func (sg *ServerGrid[T]) Selected() map[string]T {
	return sg.selected
}

// BuildDataOnLoad reports whether the view should request the first page.
func (sg *ServerGrid[T]) BuildDataOnLoad() bool {
	return sg.buildOnLoad
}

// Close stops a pending rebuild and aborts in-flight requests.
// State is kept as it was and the listener is not called again.
func (sg *ServerGrid[T]) Close() {

	sg.mu.Lock()
	defer sg.mu.Unlock()

	sg.closed = true
	if sg.timer != nil {
		sg.timer.Stop()
	}
	sg.cancel()
}

// unexported

func (sg *ServerGrid[T]) buildQueryURL() string {

	in := query.Input{
		Filters: nt.FilterPairs(sg.columns),
		Sorters: sg.sorters,
		Offset:  sg.paginator.Offset,
		Limit:   sg.paginator.Limit,
	}

	return sg.builders.Build(sg.base, in)
}

func (sg *ServerGrid[T]) fetch(ctx context.Context, target string) Result[T] {

	resp, err := sg.gateway.Query(ctx, target, fetch.Options{})
	if err != nil {
		return TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransportError{Err: errors.Wrapf(err, "failed to read response")}
	}
	if !json.Valid(body) {
		return TransportError{Err: errors.Errorf("malformed json response from %s", target)}
	}

	page, err := sg.mapRows(Payload{Body: body, Header: resp.Header})
	if err != nil {
		return TransportError{Err: err}
	}

	return Ok[T]{Page: page, Header: resp.Header}
}

func (sg *ServerGrid[T]) mapRows(payload Payload) (page Page[T], err error) {

	defer func() {
		if rcv := recover(); rcv != nil {
			err = errors.Errorf("mapper panicked: %v", rcv)
		}
	}()

	page, err = sg.mapper(payload)
	if err != nil {
		err = errors.Wrapf(err, "failed to map response")
		return
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return
}

// apply settles a result into state; caller holds the lock.
func (sg *ServerGrid[T]) apply(ctx context.Context, result Result[T]) {

	switch res := result.(type) {
	case Ok[T]:
		sg.err = nil
		sg.data = res.Page.Data
		sg.count = res.Page.Count
		sg.totalHeader = -1
		if total, ok := totalCount(res.Header); ok {
			sg.totalHeader = total
		}
	case HTTPError:
		sg.err = &nt.GridError{Code: res.Code, Message: res.Message}
		sg.logger.Error(ctx, "grid request rejected", sg.err, "code", res.Code)
	case TransportError:
		sg.err = &nt.GridError{Code: http.StatusInternalServerError, Message: res.Message()}
		sg.logger.Error(ctx, "grid request failed", res.Err)
	}
}

func (sg *ServerGrid[T]) loadInitial(loader func(ctx context.Context) (Page[T], error)) {

	page, err := loader(sg.ctx)

	sg.mu.Lock()
	if sg.closed {
		sg.mu.Unlock()
		return
	}
	if sg.discardStale && sg.seq != 0 {
		sg.mu.Unlock()
		sg.logger.Info(sg.ctx, "discarding initial data superseded by rebuild")
		return
	}

	if err != nil {
		sg.err = &nt.GridError{Code: http.StatusInternalServerError, Message: err.Error()}
		sg.logger.Error(sg.ctx, "failed to load initial data", err)
	} else {
		sg.err = nil
		sg.data = page.Data
		if sg.data == nil {
			sg.data = []T{}
		}
		sg.count = page.Count
	}
	sg.loading = false
	sg.mu.Unlock()

	sg.notify()
}

func (sg *ServerGrid[T]) notify() {

	sg.mu.Lock()
	listener := sg.listener
	sg.mu.Unlock()

	if listener != nil {
		listener()
	}
}
