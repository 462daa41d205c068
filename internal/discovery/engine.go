package discovery

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"showcase/internal/catalog"
	"showcase/internal/loader"
	"showcase/internal/models"
	"showcase/internal/notify"
	"showcase/internal/pipeline"
	"showcase/internal/timer"

	"go.uber.org/zap"
)

var (
	ErrNotReady       = errors.New("articles are not loaded yet")
	ErrUnknownArticle = errors.New("unknown article")
	ErrClosed         = errors.New("engine is closed")
)

const (
	hintNarrowed = "Try adjusting your search or filters"
	hintEmpty    = "Check back soon for new content"
	loadFailed   = "We couldn't load the articles. Please try again."

	msgBookmarkAdded   = "Added to bookmarks"
	msgBookmarkRemoved = "Removed from bookmarks"
)

// Options configures an Engine. Zero values fall back to the defaults of the
// original showcase: 6 per page, 300ms debounce, 1200ms initial load, 800ms retry.
type Options struct {
	PageSize       int
	SearchDebounce time.Duration
	Load           loader.Options
	Attempter      loader.Attempter
	Clock          timer.Clock
	Notifier       notify.Notifier
	Pipeline       *pipeline.Pipeline
}

func (o *Options) applyDefaults() {
	if o.PageSize <= 0 {
		o.PageSize = pipeline.DefaultPageSize
	}
	if o.SearchDebounce <= 0 {
		o.SearchDebounce = 300 * time.Millisecond
	}
	if o.Load.InitialDelay <= 0 {
		o.Load.InitialDelay = 1200 * time.Millisecond
	}
	if o.Load.RetryDelay <= 0 {
		o.Load.RetryDelay = 800 * time.Millisecond
	}
	if o.Clock == nil {
		o.Clock = timer.RealClock{}
	}
	if o.Notifier == nil {
		o.Notifier = notify.Discard{}
	}
	if o.Pipeline == nil {
		o.Pipeline = pipeline.New()
	}
}

// Engine owns the state of one showcase view. All state lives behind one
// mutex; timer callbacks take the same mutex, so every event is applied
// atomically and in order.
type Engine struct {
	mu        sync.Mutex
	store     *catalog.Store
	opts      Options
	query     QueryState
	bookmarks *Bookmarks
	debounce  *timer.Slot
	loader    *loader.Loader
	closed    bool
}

// New builds an engine over store and starts the initial load
func New(store *catalog.Store, opts Options) *Engine {
	opts.applyDefaults()

	e := &Engine{
		store:     store,
		opts:      opts,
		query:     NewQueryState(),
		bookmarks: NewBookmarks(),
	}
	e.debounce = timer.NewSlot(opts.Clock, &e.mu)
	e.loader = loader.New(&e.mu, opts.Clock, opts.Attempter, opts.Load)
	e.loader.OnChange(func(s loader.State) {
		zap.S().Debugf("Showcase load state changed to %s", s)
	})

	e.mu.Lock()
	e.loader.Start()
	e.mu.Unlock()

	return e
}

// SetCategory switches the category tab and goes back to the first page
func (e *Engine) SetCategory(c models.Category) error {
	if c != models.CategoryAll && !c.Known() {
		return fmt.Errorf("unknown category '%s'", c)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	e.query.Category = c
	e.query.Page = 1
	return nil
}

// SetSearch records a keystroke. The text reaches the pipeline once it has
// been stable for the debounce interval.
func (e *Engine) SetSearch(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	e.query.RawSearch = text
	e.debounce.Schedule(e.opts.SearchDebounce, e.commitSearch)
	return nil
}

// CommitSearch applies the raw search text immediately, as pressing enter would
func (e *Engine) CommitSearch() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	e.debounce.Cancel()
	e.commitSearch()
	return nil
}

// commitSearch runs with e.mu held
func (e *Engine) commitSearch() {
	e.query.DebouncedSearch = strings.TrimSpace(e.query.RawSearch)
	e.query.Page = 1
}

func (e *Engine) SetSort(s models.SortMode) error {
	if s != models.SortNewest && s != models.SortMostPopular {
		return fmt.Errorf("unknown sort mode '%s'", s)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	e.query.Sort = s
	e.query.Page = 1
	return nil
}

// LoadMore reveals the next page. It reports false, changing nothing, when
// everything is already visible.
func (e *Engine) LoadMore() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usable(); err != nil {
		return false, err
	}

	if !e.window().HasMore {
		return false, nil
	}
	e.query.Page++
	return true, nil
}

// ResetFilters returns to the unfiltered first page, dropping any pending search
func (e *Engine) ResetFilters() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	e.debounce.Cancel()
	e.query.Category = models.CategoryAll
	e.query.RawSearch = ""
	e.query.DebouncedSearch = ""
	e.query.Page = 1
	return nil
}

// ToggleBookmark flips the bookmark of an article and returns the new membership
func (e *Engine) ToggleBookmark(id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usable(); err != nil {
		return false, err
	}
	if !e.store.Has(id) {
		return false, ErrUnknownArticle
	}

	added := e.bookmarks.Toggle(id)
	if added {
		e.opts.Notifier.Notify(msgBookmarkAdded, notify.KindSuccess)
	} else {
		e.opts.Notifier.Notify(msgBookmarkRemoved, notify.KindSuccess)
	}
	return added, nil
}

func (e *Engine) IsBookmarked(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bookmarks.Has(id)
}

// Retry restarts a failed load. It reports false when nothing failed.
func (e *Engine) Retry() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false, ErrClosed
	}
	return e.loader.Retry(), nil
}

// Article returns the preview of one article
func (e *Engine) Article(id string) (models.ArticleDetail, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usable(); err != nil {
		return models.ArticleDetail{}, err
	}

	article, ok := e.store.Get(id)
	if !ok {
		return models.ArticleDetail{}, ErrUnknownArticle
	}
	return article.Detail(e.bookmarks.Has(id)), nil
}

func (e *Engine) Query() QueryState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

func (e *Engine) State() loader.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loader.State()
}

// View is what a client renders
type View struct {
	State         loader.State         `json:"state"`
	Query         QueryState           `json:"query"`
	SearchPending bool                 `json:"search_pending"`
	Articles      []models.ArticleCard `json:"articles"`
	Total         int                  `json:"total"`
	HasMore       bool                 `json:"has_more"`
	Empty         bool                 `json:"empty"`
	EmptyHint     string               `json:"empty_hint,omitempty"`
	Placeholders  int                  `json:"placeholders,omitempty"`
	Error         string               `json:"error,omitempty"`
	Bookmarks     []string             `json:"bookmarks"`
}

// View derives the current view. The pipeline only runs once articles are loaded.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		State:         e.loader.State(),
		Query:         e.query,
		SearchPending: e.debounce.Pending(),
		Articles:      []models.ArticleCard{},
		Bookmarks:     e.bookmarks.IDs(),
	}

	switch v.State {
	case loader.StateLoading:
		v.Placeholders = e.opts.PageSize
		return v
	case loader.StateError:
		v.Error = loadFailed
		return v
	}

	page := e.window()
	for _, a := range page.Visible {
		v.Articles = append(v.Articles, a.Card(e.bookmarks.Has(a.ID)))
	}
	v.Total = page.Total
	v.HasMore = page.HasMore

	if page.Total == 0 {
		v.Empty = true
		v.EmptyHint = EmptyHint(e.query.Narrowed())
	}
	return v
}

// EmptyHint is the message shown when no article matches. Narrowed results
// point the visitor at the filters.
func EmptyHint(narrowed bool) string {
	if narrowed {
		return hintNarrowed
	}
	return hintEmpty
}

// Close cancels pending timers. Further mutations fail with ErrClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.debounce.Close()
	e.loader.Close()
}

// Closed reports whether Close has been called
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// window runs with e.mu held
func (e *Engine) window() pipeline.Page {
	filtered := e.opts.Pipeline.Compute(e.store.Articles(), e.query.PipelineQuery())
	return pipeline.Window(filtered, e.query.Page, e.opts.PageSize)
}

// usable runs with e.mu held
func (e *Engine) usable() error {
	if e.closed {
		return ErrClosed
	}
	if !e.loader.Ready() {
		return ErrNotReady
	}
	return nil
}
