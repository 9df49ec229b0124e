package pagination

// State is the persisted page-navigation state of one query session.
// Pages are 1-based.
type State struct {
	Current    int // page being requested or displayed
	Highest    int // best known upper page bound
	LastViewed int // most recent page that displayed results
	PageSize   int // results per page
}

// Normalize clamps the state to its invariants: every page index is at least
// 1 and the highest known page is never below the current page.
func (s State) Normalize() State {
	if s.Current < 1 {
		s.Current = 1
	}
	if s.LastViewed < 1 {
		s.LastViewed = 1
	}
	if s.Highest < s.Current {
		s.Highest = s.Current
	}
	return s
}

// IsPristine reports whether the state is the first page of a fresh query:
// current, highest and last viewed are all 1.
func (s State) IsPristine() bool {
	return s.Current == 1 && s.Highest == 1 && s.LastViewed == 1
}
