// Package controller drives one CRUD page: it holds pagination, filter,
// selection and dialog state, reads lists through the query cache and
// invalidates the resource's cache namespace after every successful write.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/truccaai/trucca/internal/cache"
	"github.com/truccaai/trucca/internal/endpoints"
	"github.com/truccaai/trucca/internal/logging"
	"github.com/truccaai/trucca/internal/models"
	"github.com/truccaai/trucca/internal/resource"
	"github.com/truccaai/trucca/internal/validate"
)

// DefaultLimit is the page size of a new controller.
const DefaultLimit = 10

var (
	// ErrMutationPending is returned while another write from the same page is in flight.
	ErrMutationPending = errors.New("another operation is in progress")
	// ErrNoDialog is returned by Submit and ConfirmDelete when no matching dialog is open.
	ErrNoDialog = errors.New("no dialog open for this action")
)

// Service is the resource API a page needs.
type Service[T any] interface {
	Name() string
	GetAll(ctx context.Context, p endpoints.ListParams) (*resource.Page[T], error)
	GetByID(ctx context.Context, id models.ID) (*T, error)
	Create(ctx context.Context, payload any) (*T, error)
	Update(ctx context.Context, id models.ID, payload any) (*T, error)
	Delete(ctx context.Context, ids []models.ID) error
	Copy(ctx context.Context, id models.ID) (*T, error)
	CopyForm(ctx context.Context, id models.ID) (any, error)
	ExportToExcel(ctx context.Context, filters endpoints.Query) (*resource.Blob, error)
	ImportFromExcel(ctx context.Context, filename string, r io.Reader) (*resource.ImportResult, error)
	DownloadTemplate(ctx context.Context) (*resource.Blob, error)
}

// Notifier shows the outcome of an action to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// DownloadRecorder keeps a history of files written by the page.
type DownloadRecorder interface {
	Record(resource, kind, filename string, size int64) error
}

// Options configures a Controller.
type Options struct {
	Limit     int
	Dir       string // where downloads are written; "" is the working directory
	Notifier  Notifier
	Downloads DownloadRecorder
	Logger    *zap.Logger
}

// Controller is the state machine of one resource page. It is safe for
// concurrent use.
type Controller[T any] struct {
	svc       Service[T]
	cache     *cache.Cache
	notify    Notifier
	downloads DownloadRecorder
	dir       string
	logger    *zap.Logger

	mu      sync.Mutex
	state   State
	pending bool
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// New creates a controller showing the first page with no filters.
func New[T any](svc Service[T], c *cache.Cache, opts Options) *Controller[T] {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller[T]{
		svc:       svc,
		cache:     c,
		notify:    opts.Notifier,
		downloads: opts.Downloads,
		dir:       opts.Dir,
		logger:    opts.Logger.With(logging.Component("controller." + svc.Name())),
		state:     State{Page: 1, Limit: opts.Limit},
	}
}

// State returns a copy of the current state.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Selected = append([]models.ID(nil), c.state.Selected...)
	return s
}

// Key is the cache key of the current list view.
func (c *Controller[T]) Key() cache.Key {
	return c.key(c.State())
}

func (c *Controller[T]) key(s State) cache.Key {
	return cache.Key{c.svc.Name(), s.Page, s.Limit, s.Keyword, s.SortKey, s.SortDir}
}

// Namespace is the cache prefix shared by every list view of the resource.
func (c *Controller[T]) Namespace() cache.Key {
	return cache.Key{c.svc.Name()}
}

// List returns the current page, from the cache when it is fresh.
func (c *Controller[T]) List(ctx context.Context) (*resource.Page[T], error) {
	s := c.State()
	page, err := cache.Query(ctx, c.cache, c.key(s), func(ctx context.Context) (*resource.Page[T], error) {
		return c.svc.GetAll(ctx, s.Params())
	})
	if err != nil {
		c.fail("list", err)
		return nil, err
	}
	st := c.cache.Stats()
	c.logger.Debug("list", logging.Count(len(page.Items)), zap.Int("cache_hits", st.Hits), zap.Int("cache_misses", st.Misses))
	return page, nil
}

// Search filters by keyword and returns to the first page.
func (c *Controller[T]) Search(keyword string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Keyword = strings.TrimSpace(keyword)
	c.state.Page = 1
}

// SetPage moves to page n (1-based).
func (c *Controller[T]) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Page = n
}

// SetLimit changes the page size and returns to the first page.
func (c *Controller[T]) SetLimit(n int) {
	if n <= 0 {
		n = DefaultLimit
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Limit = n
	c.state.Page = 1
}

// SortBy sorts by key. Sorting again by the same key flips the direction.
func (c *Controller[T]) SortBy(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key == "" {
		c.state.SortKey, c.state.SortDir = "", ""
		return
	}
	if c.state.SortKey == key && c.state.SortDir == endpoints.SortAsc {
		c.state.SortDir = endpoints.SortDesc
		return
	}
	c.state.SortKey, c.state.SortDir = key, endpoints.SortAsc
}

// SortDirection sets an explicit direction for the current sort key.
func (c *Controller[T]) SortDirection(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.SortKey == "" {
		return
	}
	if dir == endpoints.SortDesc {
		c.state.SortDir = endpoints.SortDesc
	} else {
		c.state.SortDir = endpoints.SortAsc
	}
}

// Select adds ids to the selection, ignoring ones already selected.
func (c *Controller[T]) Select(ids ...models.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		if id.IsZero() || c.selectedLocked(id) {
			continue
		}
		c.state.Selected = append(c.state.Selected, id)
	}
}

// Deselect removes ids from the selection.
func (c *Controller[T]) Deselect(ids ...models.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(ids)
}

// Toggle flips the selection of id.
func (c *Controller[T]) Toggle(id models.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedLocked(id) {
		c.removeLocked([]models.ID{id})
		return
	}
	if !id.IsZero() {
		c.state.Selected = append(c.state.Selected, id)
	}
}

// ClearSelection empties the selection.
func (c *Controller[T]) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selected = nil
}

// CanBulkDelete reports whether the bulk delete control is enabled.
func (c *Controller[T]) CanBulkDelete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.state.Selected) > 0 && !c.pending
}

func (c *Controller[T]) selectedLocked(id models.ID) bool {
	for _, s := range c.state.Selected {
		if s == id {
			return true
		}
	}
	return false
}

func (c *Controller[T]) removeLocked(ids []models.ID) {
	if len(ids) == 0 || len(c.state.Selected) == 0 {
		return
	}
	drop := make(map[models.ID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := c.state.Selected[:0]
	for _, s := range c.state.Selected {
		if _, ok := drop[s]; !ok {
			kept = append(kept, s)
		}
	}
	c.state.Selected = kept
}

// OpenCreate opens the create dialog.
func (c *Controller[T]) OpenCreate() { c.open(DialogCreate, "") }

// OpenEdit opens the edit dialog for id.
func (c *Controller[T]) OpenEdit(id models.ID) { c.open(DialogEdit, id) }

// OpenCopy opens the copy dialog for id.
func (c *Controller[T]) OpenCopy(id models.ID) { c.open(DialogCopy, id) }

// OpenDelete opens the delete confirmation for id.
func (c *Controller[T]) OpenDelete(id models.ID) { c.open(DialogDelete, id) }

// OpenBulkDelete opens the bulk delete confirmation. It refuses to open on an
// empty selection.
func (c *Controller[T]) OpenBulkDelete() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.state.Selected) == 0 {
		return resource.ErrEmptySelection
	}
	c.state.Dialog, c.state.Target = DialogBulkDelete, ""
	return nil
}

// Close closes the open dialog.
func (c *Controller[T]) Close() { c.open(DialogNone, "") }

func (c *Controller[T]) open(d Dialog, id models.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Dialog, c.state.Target = d, id
	c.logger.Debug("dialog", logging.Dialog(d.String()))
}

// EditForm loads the record the edit dialog is open on.
func (c *Controller[T]) EditForm(ctx context.Context) (*T, error) {
	s := c.State()
	if s.Dialog != DialogEdit {
		return nil, ErrNoDialog
	}
	rec, err := c.svc.GetByID(ctx, s.Target)
	if err != nil {
		c.fail("load", err)
		return nil, err
	}
	return rec, nil
}

// CopyForm returns the pre-filled create form for the copy dialog. It fails
// with resource.ErrCopyUnsupported for resources copied server-side.
func (c *Controller[T]) CopyForm(ctx context.Context) (any, error) {
	s := c.State()
	if s.Dialog != DialogCopy {
		return nil, ErrNoDialog
	}
	return c.svc.CopyForm(ctx, s.Target)
}

// Submit sends the open create, edit or copy dialog. A nil form in the copy
// dialog duplicates the target as is. On success the resource's list cache
// is invalidated and the dialog closes; on failure the state is unchanged.
func (c *Controller[T]) Submit(ctx context.Context, form any) (*T, error) {
	s, err := c.begin(DialogCreate, DialogEdit, DialogCopy)
	if err != nil {
		return nil, err
	}
	defer c.end()

	if form != nil {
		if err := validate.Struct(form); err != nil {
			c.fail(s.Dialog.String(), err)
			return nil, err
		}
	}

	var (
		rec  *T
		verb string
	)
	switch s.Dialog {
	case DialogCreate:
		rec, err = c.svc.Create(ctx, form)
		verb = "created"
	case DialogEdit:
		rec, err = c.svc.Update(ctx, s.Target, form)
		verb = "updated"
	case DialogCopy:
		if form == nil {
			rec, err = c.svc.Copy(ctx, s.Target)
		} else {
			rec, err = c.svc.Create(ctx, form)
		}
		verb = "copied"
	}
	if err != nil {
		c.fail(s.Dialog.String(), err)
		return nil, err
	}

	c.invalidate()
	c.Close()
	c.notify.Success(fmt.Sprintf("%s %s", c.svc.Name(), verb))
	return rec, nil
}

// ConfirmDelete deletes the target of the delete dialog, or the selection
// for the bulk delete dialog. Deleted ids leave the selection.
func (c *Controller[T]) ConfirmDelete(ctx context.Context) error {
	s, err := c.begin(DialogDelete, DialogBulkDelete)
	if err != nil {
		return err
	}
	defer c.end()

	ids := s.Selected
	if s.Dialog == DialogDelete {
		ids = nil
		if !s.Target.IsZero() {
			ids = []models.ID{s.Target}
		}
	}
	if len(ids) == 0 {
		c.fail("delete", resource.ErrEmptySelection)
		return resource.ErrEmptySelection
	}

	if err := c.svc.Delete(ctx, ids); err != nil {
		c.fail("delete", err)
		return err
	}

	c.invalidate()
	c.Deselect(ids...)
	c.Close()
	c.notify.Success(fmt.Sprintf("%d %s record(s) deleted", len(ids), c.svc.Name()))
	return nil
}

// Export downloads the current filtered view and writes it to the
// controller's directory. The cache is not touched.
func (c *Controller[T]) Export(ctx context.Context) (string, error) {
	s := c.State()
	filters := endpoints.Query{}
	if s.Keyword != "" {
		filters = filters.Add("keyword", s.Keyword)
	}
	if s.SortKey != "" {
		filters = filters.Add("sort_key", s.SortKey).Add("sort_dir", s.SortDir)
	}

	blob, err := c.svc.ExportToExcel(ctx, filters)
	if err != nil {
		c.fail("export", err)
		return "", err
	}
	path, err := c.save(blob, models.DownloadExport)
	if err != nil {
		c.fail("export", err)
		return "", err
	}
	c.notify.Success("exported to " + path)
	return path, nil
}

// Template downloads the import template.
func (c *Controller[T]) Template(ctx context.Context) (string, error) {
	blob, err := c.svc.DownloadTemplate(ctx)
	if err != nil {
		c.fail("template", err)
		return "", err
	}
	path, err := c.save(blob, models.DownloadTemplate)
	if err != nil {
		c.fail("template", err)
		return "", err
	}
	c.notify.Success("template saved to " + path)
	return path, nil
}

// Import uploads a file. The server's message is shown verbatim and the
// list cache is invalidated since rows may have been created.
func (c *Controller[T]) Import(ctx context.Context, filename string, r io.Reader) (*resource.ImportResult, error) {
	if _, err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	res, err := c.svc.ImportFromExcel(ctx, filename, r)
	if err != nil {
		c.fail("import", err)
		return nil, err
	}
	c.invalidate()
	c.notify.Success(res.Message)
	return res, nil
}

// begin marks a mutation in flight. When dialogs are given, one of them must
// be open.
func (c *Controller[T]) begin(dialogs ...Dialog) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return State{}, ErrMutationPending
	}
	if len(dialogs) > 0 {
		ok := false
		for _, d := range dialogs {
			if c.state.Dialog == d {
				ok = true
				break
			}
		}
		if !ok {
			return State{}, ErrNoDialog
		}
	}
	c.pending = true
	s := c.state
	s.Selected = append([]models.ID(nil), c.state.Selected...)
	return s, nil
}

func (c *Controller[T]) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
}

// Pending reports whether a mutation is in flight.
func (c *Controller[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Controller[T]) invalidate() {
	n := c.cache.Invalidate(c.Namespace())
	c.logger.Debug("list invalidated", logging.Count(n), zap.Int("entries", c.cache.Len()))
}

func (c *Controller[T]) save(blob *resource.Blob, kind string) (string, error) {
	path := filepath.Join(c.dir, filepath.Base(blob.Filename))
	if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if c.downloads != nil {
		if err := c.downloads.Record(c.svc.Name(), kind, path, int64(len(blob.Data))); err != nil {
			c.logger.Warn("record download", zap.Error(err))
		}
	}
	c.logger.Info("file saved", logging.Filename(path), zap.Int("bytes", len(blob.Data)))
	return path, nil
}

func (c *Controller[T]) fail(action string, err error) {
	c.logger.Debug("action failed", zap.String("action", action), zap.Error(err))
	c.notify.Error(err.Error())
}
