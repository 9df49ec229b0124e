// Package reconcile computes edit scripts between successive result lists
// and delivers them to a consuming list, one authoritative result at a time.
package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"books-search/internal/domain/entity"
)

var (
	// ErrIdentityPolicyRequired indicates a diff was requested without an identity policy.
	ErrIdentityPolicyRequired = errors.New("identity policy required")

	// ErrInvalidScript indicates a script that does not fit the list it is applied to.
	ErrInvalidScript = errors.New("invalid edit script")
)

// Identity decides whether two list positions hold the same logical item.
// There is no default: the integrator picks one.
type Identity struct {
	name string
	key  func(*entity.Book) string
}

var (
	// IdentityByID compares the catalog-assigned volume id.
	IdentityByID = Identity{name: "id", key: (*entity.Book).ID}

	// IdentityByDisplayKey compares the displayed title. Two different
	// volumes with the same title are treated as one row, so an animation
	// may show a content change where the catalog has a different entry.
	IdentityByDisplayKey = Identity{name: "title", key: (*entity.Book).DisplayKey}
)

// String returns the policy name.
func (p Identity) String() string { return p.name }

// ParseIdentity resolves a policy name: "id" or "title".
func ParseIdentity(name string) (Identity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case IdentityByID.name:
		return IdentityByID, nil
	case IdentityByDisplayKey.name, "displaykey":
		return IdentityByDisplayKey, nil
	case "":
		return Identity{}, ErrIdentityPolicyRequired
	default:
		return Identity{}, fmt.Errorf("%w: unknown policy %q", ErrIdentityPolicyRequired, name)
	}
}

// Name returns the policy name accepted by ParseIdentity.
func (p Identity) Name() string { return p.name }

// IsZero reports whether no policy was chosen.
func (p Identity) IsZero() bool { return p.key == nil }

// Key returns the identity key of b.
func (p Identity) Key(b *entity.Book) string { return p.key(b) }
