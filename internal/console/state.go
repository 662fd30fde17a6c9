package console

import "github.com/noah-isme/sma-adp-console/internal/models"

// Kind identifies one of the two managed collections.
type Kind string

const (
	KindAccount    Kind = "account"
	KindInvitation Kind = "invitation"
)

// Tab is the active collection view.
type Tab string

const (
	TabAccounts    Tab = "accounts"
	TabInvitations Tab = "invitations"
)

// Kind returns the record kind rendered by the tab.
func (t Tab) Kind() Kind {
	if t == TabInvitations {
		return KindInvitation
	}
	return KindAccount
}

// State is the process-local view state. It is rebuilt on every load and never persisted.
// All mutation goes through the methods below; Console serialises access to it.
type State struct {
	Tab         Tab
	Filters     Filters
	Page        int
	PageSize    int
	Accounts    []models.Account
	Invitations []models.Invitation
	Programs    []models.ProgramChoice

	accountSelection    *Selection
	invitationSelection *Selection
}

// NewState returns a blank state on the accounts tab.
func NewState(pageSize int) *State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &State{
		Tab:                 TabAccounts,
		Page:                1,
		PageSize:            pageSize,
		Accounts:            []models.Account{},
		Invitations:         []models.Invitation{},
		accountSelection:    NewSelection(),
		invitationSelection: NewSelection(),
	}
}

// Selection returns the selection set for kind.
func (s *State) Selection(kind Kind) *Selection {
	if kind == KindInvitation {
		return s.invitationSelection
	}
	return s.accountSelection
}

// SetTab switches the active tab and resets the page.
func (s *State) SetTab(tab Tab) {
	if tab != TabInvitations {
		tab = TabAccounts
	}
	s.Tab = tab
	s.Page = 1
}

// SetFilters replaces the filter criteria and resets the page.
func (s *State) SetFilters(f Filters) {
	s.Filters = f
	s.Page = 1
}

// SetPage moves to page. Out-of-range requests are ignored and reported as false.
func (s *State) SetPage(page int) bool {
	if page < 1 || page > s.PageCount() {
		return false
	}
	s.Page = page
	return true
}

// ReplaceAccounts swaps in a freshly loaded account collection. Selected ids that are no longer
// loaded are dropped and the page is re-clamped to the new page count.
func (s *State) ReplaceAccounts(accounts []models.Account) {
	s.Accounts = accounts
	s.accountSelection.Retain(func(id string) bool {
		_, ok := s.FindAccount(id)
		return ok
	})
	s.clampPage()
}

// ReplaceInvitations is ReplaceAccounts for the invitation collection.
func (s *State) ReplaceInvitations(invitations []models.Invitation) {
	s.Invitations = invitations
	s.invitationSelection.Retain(func(id string) bool {
		_, ok := s.FindInvitation(id)
		return ok
	})
	s.clampPage()
}

// Toggle flips selection of a loaded record. Ids absent from the collection of kind are
// refused and reported as not selected.
func (s *State) Toggle(kind Kind, id string) bool {
	if !s.Loaded(kind, id) {
		return false
	}
	return s.Selection(kind).Toggle(id)
}

// Loaded reports whether id is present in the collection of kind.
func (s *State) Loaded(kind Kind, id string) bool {
	if kind == KindInvitation {
		_, ok := s.FindInvitation(id)
		return ok
	}
	_, ok := s.FindAccount(id)
	return ok
}

func (s *State) clampPage() {
	s.Page = ClampPage(s.Page, s.TotalFiltered(), s.PageSize)
}

// FilteredAccounts applies the current filters to the account collection.
func (s *State) FilteredAccounts() []models.Account {
	return FilterAccounts(s.Accounts, s.Filters)
}

// FilteredInvitations applies the current filters to the invitation collection.
func (s *State) FilteredInvitations() []models.Invitation {
	return FilterInvitations(s.Invitations, s.Filters)
}

// TotalFiltered counts the filtered records of the active tab.
func (s *State) TotalFiltered() int {
	if s.Tab == TabInvitations {
		return len(s.FilteredInvitations())
	}
	return len(s.FilteredAccounts())
}

// PageCount is the number of pages of the active tab.
func (s *State) PageCount() int {
	return PageCount(s.TotalFiltered(), s.PageSize)
}

// VisibleAccounts is the current page of filtered accounts.
func (s *State) VisibleAccounts() Page[models.Account] {
	return Paginate(s.FilteredAccounts(), s.Page, s.PageSize)
}

// VisibleInvitations is the current page of filtered invitations.
func (s *State) VisibleInvitations() Page[models.Invitation] {
	return Paginate(s.FilteredInvitations(), s.Page, s.PageSize)
}

// VisibleIDs lists the identifiers rendered on the current page of the active tab.
func (s *State) VisibleIDs() []string {
	if s.Tab == TabInvitations {
		page := s.VisibleInvitations()
		ids := make([]string, len(page.Items))
		for i, inv := range page.Items {
			ids[i] = inv.ID
		}
		return ids
	}
	page := s.VisibleAccounts()
	ids := make([]string, len(page.Items))
	for i, a := range page.Items {
		ids[i] = a.ID
	}
	return ids
}

// BulkEnabled reports whether the active tab has a non-empty selection.
func (s *State) BulkEnabled() bool {
	return s.Selection(s.Tab.Kind()).Len() > 0
}

// FindAccount looks up a loaded account.
func (s *State) FindAccount(id string) (models.Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return models.Account{}, false
}

// FindInvitation looks up a loaded invitation.
func (s *State) FindInvitation(id string) (models.Invitation, bool) {
	for _, inv := range s.Invitations {
		if inv.ID == id {
			return inv, true
		}
	}
	return models.Invitation{}, false
}
