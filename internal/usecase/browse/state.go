package browse

import (
	"fmt"
	"strconv"
	"strings"
)

// State is the controller's position in the fetch/display cycle.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateDisplaying
	StateRestoring
	StateEmpty
	StateNetworkError
)

var stateNames = [...]string{
	StateIdle:         "idle",
	StateFetching:     "fetching",
	StateDisplaying:   "displaying",
	StateRestoring:    "restoring",
	StateEmpty:        "empty",
	StateNetworkError: "network_error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText renders the state name in JSON responses.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// busy reports whether a navigation action must wait for the state to settle.
func (s State) busy() bool {
	return s == StateFetching || s == StateRestoring
}

// Action is a page navigation request.
type Action int

const (
	ActionFirst Action = iota
	ActionPrevious
	ActionNext
	ActionLast
	ActionJump
)

func (a Action) String() string {
	switch a {
	case ActionFirst:
		return "first"
	case ActionPrevious:
		return "previous"
	case ActionNext:
		return "next"
	case ActionLast:
		return "last"
	case ActionJump:
		return "jump"
	default:
		return "unknown"
	}
}

// ParseAction resolves an action name. A bare page number is a jump to that
// page and is returned as the second value.
func ParseAction(s string) (Action, int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return ActionFirst, 0, nil
	case "previous", "prev":
		return ActionPrevious, 0, nil
	case "next":
		return ActionNext, 0, nil
	case "last":
		return ActionLast, 0, nil
	case "jump":
		return ActionJump, 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return ActionJump, n, nil
}

// target computes the page an action leads to.
func (a Action) target(current, highest, page int) int {
	switch a {
	case ActionFirst:
		return 1
	case ActionPrevious:
		return current - 1
	case ActionNext:
		return current + 1
	case ActionLast:
		return highest
	default:
		return page
	}
}
