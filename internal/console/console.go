// Package console is the admin console state and workflow engine. It turns fetched accounts and
// invitations into a filtered, paginated, selectable view, runs bulk actions against the
// selection and drives the shared invite dialog through named workflows.
package console

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// Options configures a Console.
type Options struct {
	PageSize     int
	ProgramsWait time.Duration
	Logger       *zap.Logger
	Confirmer    Confirmer
	Events       Events
	Registry     *Registry
	NoticeSinks  []NoticeSink
	Now          func() time.Time
}

// Console owns the view state and coordinates every operator action. The mutex guards state
// and dialog; it is never held across a Remote call.
type Console struct {
	mu     sync.Mutex
	state  *State
	dialog *Dialog

	remote   Remote
	registry *Registry
	notices  *Surface
	confirm  Confirmer
	events   Events
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	programsWait  time.Duration
	programsReady chan struct{}
	readyOnce     sync.Once
}

// New builds a Console over remote.
func New(remote Remote, opts Options) *Console {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Confirmer == nil {
		opts.Confirmer = AutoConfirm
	}
	if opts.Events == nil {
		opts.Events = noopEvents{}
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.ProgramsWait <= 0 {
		opts.ProgramsWait = 3 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Console{
		state:         NewState(opts.PageSize),
		dialog:        newDialog(),
		remote:        remote,
		registry:      opts.Registry,
		notices:       NewSurface(opts.Logger, opts.NoticeSinks...),
		confirm:       opts.Confirmer,
		events:        opts.Events,
		logger:        opts.Logger,
		validate:      newFormValidator(),
		now:           opts.Now,
		programsWait:  opts.ProgramsWait,
		programsReady: make(chan struct{}),
	}
}

// View is an immutable render of the console at one instant.
type View struct {
	Tab                 Tab                     `json:"tab"`
	Filters             Filters                 `json:"filters"`
	Page                int                     `json:"page"`
	PageCount           int                     `json:"page_count"`
	PageIndex           []PageMarker            `json:"page_index"`
	Accounts            Page[models.Account]    `json:"accounts"`
	Invitations         Page[models.Invitation] `json:"invitations"`
	SelectedAccounts    []string                `json:"selected_accounts"`
	SelectedInvitations []string                `json:"selected_invitations"`
	AllVisibleSelected  bool                    `json:"all_visible_selected"`
	BulkEnabled         bool                    `json:"bulk_enabled"`
	Notice              *Notice                 `json:"notice,omitempty"`
	Dialog              DialogView              `json:"dialog"`
	Programs            []models.ProgramChoice  `json:"programs,omitempty"`
}

// Snapshot renders the current state.
func (c *Console) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	view := View{
		Tab:                 s.Tab,
		Filters:             s.Filters,
		Page:                s.Page,
		PageCount:           s.PageCount(),
		Accounts:            s.VisibleAccounts(),
		Invitations:         s.VisibleInvitations(),
		SelectedAccounts:    s.Selection(KindAccount).IDs(),
		SelectedInvitations: s.Selection(KindInvitation).IDs(),
		AllVisibleSelected:  s.Selection(s.Tab.Kind()).AllSelected(s.VisibleIDs()),
		BulkEnabled:         s.BulkEnabled(),
		Dialog:              c.dialog.view(),
		Programs:            append([]models.ProgramChoice(nil), s.Programs...),
	}
	view.PageIndex = PageIndex(view.Page, view.PageCount)
	if notice, ok := c.notices.Current(); ok {
		view.Notice = &notice
	}
	return view
}

// Tab returns the active tab.
func (c *Console) Tab() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Tab
}

// SetTab switches tabs and resets the page to 1.
func (c *Console) SetTab(tab Tab) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SetTab(tab)
}

// Filters returns the active criteria.
func (c *Console) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Filters
}

// SetFilters replaces the criteria and resets the page to 1. Selections are kept.
func (c *Console) SetFilters(f Filters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SetFilters(f)
}

// Page returns the current 1-based page.
func (c *Console) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Page
}

// SetPage moves to page; out-of-range pages are a no-op reported as false.
func (c *Console) SetPage(page int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.SetPage(page)
}

// NextPage advances one page when possible.
func (c *Console) NextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.SetPage(c.state.Page + 1)
}

// PrevPage goes back one page when possible.
func (c *Console) PrevPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.SetPage(c.state.Page - 1)
}

// Accounts returns a copy of the loaded account collection.
func (c *Console) Accounts() []models.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Account(nil), c.state.Accounts...)
}

// SetAccounts replaces the account collection. Selections of accounts that are gone are
// dropped and the page is re-clamped.
func (c *Console) SetAccounts(accounts []models.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ReplaceAccounts(nonNil(accounts))
}

// Invitations returns a copy of the loaded invitation collection.
func (c *Console) Invitations() []models.Invitation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Invitation(nil), c.state.Invitations...)
}

// SetInvitations replaces the invitation collection with the same rules as SetAccounts.
func (c *Console) SetInvitations(invitations []models.Invitation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ReplaceInvitations(nonNil(invitations))
}

// SetPrograms replaces the program choices and signals that they are ready.
func (c *Console) SetPrograms(programs []models.ProgramChoice) {
	c.mu.Lock()
	c.state.Programs = nonNil(programs)
	c.mu.Unlock()
	c.markProgramsReady()
}

// ProgramsReady is closed once program choices have been populated.
func (c *Console) ProgramsReady() <-chan struct{} {
	return c.programsReady
}

// Toggle flips selection of id for kind and reports whether it is now selected. Ids that are
// not in the loaded collection are ignored.
func (c *Console) Toggle(kind Kind, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Toggle(kind, id)
}

// Loaded reports whether id is present in the loaded collection of kind.
func (c *Console) Loaded(kind Kind, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Loaded(kind, id)
}

// SelectAllVisible selects every row of the current page of the active tab.
func (c *Console) SelectAllVisible() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection(c.state.Tab.Kind()).SelectAll(c.state.VisibleIDs())
}

// DeselectAllVisible deselects every row of the current page of the active tab.
func (c *Console) DeselectAllVisible() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection(c.state.Tab.Kind()).DeselectAll(c.state.VisibleIDs())
}

// ClearSelection empties the selection of kind.
func (c *Console) ClearSelection(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection(kind).Clear()
}

// Selected lists the selected identifiers of kind.
func (c *Console) Selected(kind Kind) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Selection(kind).IDs()
}

// BulkEnabled reports whether bulk actions are available on the active tab.
func (c *Console) BulkEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.BulkEnabled()
}

// Notice returns the visible notice.
func (c *Console) Notice() (Notice, bool) {
	return c.notices.Current()
}

// DismissNotice hides the visible notice.
func (c *Console) DismissNotice() {
	c.notices.Dismiss()
}

// Registry exposes the workflow registry for custom integrations.
func (c *Console) Registry() *Registry {
	return c.registry
}

func (c *Console) markProgramsReady() {
	c.readyOnce.Do(func() { close(c.programsReady) })
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
