package browse

import "errors"

var (
	// ErrBusy is returned by Navigate while a fetch is in flight.
	ErrBusy = errors.New("browse: fetch in progress")

	// ErrPageOutOfRange is returned when a navigation target lies outside
	// [1, highest known page].
	ErrPageOutOfRange = errors.New("browse: page out of range")

	// ErrNoQuery is returned by Navigate and Reload before any search.
	ErrNoQuery = errors.New("browse: no search query")

	// ErrUnknownAction is returned by ParseAction.
	ErrUnknownAction = errors.New("browse: unknown action")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("browse: controller closed")
)
