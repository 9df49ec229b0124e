package browse

import (
	"books-search/internal/common/pagination"
	"books-search/internal/usecase/reconcile"
)

// PageState is published with every displayed page.
type PageState struct {
	Current int                `json:"current"`
	Highest int                `json:"highest"`
	Buttons pagination.Buttons `json:"buttons"`
}

func newPageState(current, highest int) PageState {
	return PageState{
		Current: current,
		Highest: highest,
		Buttons: pagination.Enablement(current, highest),
	}
}

// Surface renders results. Calls arrive on worker goroutines, one at a time.
type Surface interface {
	OnEditScriptReady(script reconcile.Script)
	OnPagesStateChanged(state PageState)
	OnEmptyResult()
	OnNetworkError()
	OnPageRestored(from, to int)
}

// PresentationKind selects the list or the grid rendering.
type PresentationKind int

const (
	KindList PresentationKind = iota
	KindGrid
)

func (k PresentationKind) String() string {
	if k == KindGrid {
		return "grid"
	}
	return "list"
}

// ParsePresentationKind resolves "list" or "grid".
func ParsePresentationKind(s string) (PresentationKind, bool) {
	switch s {
	case "list":
		return KindList, true
	case "grid":
		return KindGrid, true
	}
	return 0, false
}

// Presentation is a Surface tagged with the rendering it belongs to. Build
// one with ListPresentation or GridPresentation.
type Presentation struct {
	kind    PresentationKind
	surface Surface
}

// ListPresentation wraps a row-oriented surface.
func ListPresentation(s Surface) Presentation {
	return Presentation{kind: KindList, surface: s}
}

// GridPresentation wraps a card-oriented surface.
func GridPresentation(s Surface) Presentation {
	return Presentation{kind: KindGrid, surface: s}
}

// Kind returns the variant.
func (p Presentation) Kind() PresentationKind { return p.kind }

// Surface returns the wrapped surface.
func (p Presentation) Surface() Surface { return p.surface }
