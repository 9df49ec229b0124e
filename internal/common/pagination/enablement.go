package pagination

// Buttons reports which navigation affordances are enabled.
type Buttons struct {
	First    bool `json:"first"`
	Previous bool `json:"previous"`
	Next     bool `json:"next"`
	Last     bool `json:"last"`
	More     bool `json:"more"` // jump to an arbitrary page
}

// Enablement is a pure function of the current page and the highest known page.
//
//   - both 1: everything disabled (single page of results)
//   - current 1, more pages: first and previous disabled
//   - current == highest > 1: next and last disabled
//   - otherwise everything enabled
func Enablement(current, highest int) Buttons {
	switch {
	case current == 1 && highest == 1:
		return Buttons{}
	case current == 1:
		return Buttons{Next: true, Last: true, More: true}
	case current == highest:
		return Buttons{First: true, Previous: true, More: true}
	default:
		return Buttons{First: true, Previous: true, Next: true, Last: true, More: true}
	}
}

// AnyEnabled reports whether at least one affordance is enabled.
func (b Buttons) AnyEnabled() bool {
	return b.First || b.Previous || b.Next || b.Last || b.More
}
