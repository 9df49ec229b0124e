package reconcile

import (
	"fmt"
	"slices"

	"books-search/internal/domain/entity"
)

// OpKind is the kind of one edit operation.
type OpKind int

const (
	OpRemove OpKind = iota
	OpMove
	OpInsert
	OpChange
)

func (k OpKind) String() string {
	switch k {
	case OpRemove:
		return "remove"
	case OpMove:
		return "move"
	case OpInsert:
		return "insert"
	case OpChange:
		return "change"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is one edit operation. Indices refer to the list as it is when the
// operation is applied, after every earlier operation in the script.
//
//   - Remove: delete the row at From.
//   - Move:   delete the row at From, then insert it at To.
//   - Insert: insert Record at To.
//   - Change: replace the row at To with Record; Payload names the changed groups.
type Op struct {
	Kind    OpKind
	From    int
	To      int
	Record  *entity.Book
	Payload Payload
}

// Script is an ordered edit script: removes (descending old index), moves,
// inserts (ascending new index), then content changes at final positions.
type Script struct {
	Ops []Op
}

// IsEmpty reports whether the script holds no operations.
func (s Script) IsEmpty() bool { return len(s.Ops) == 0 }

// Count returns the number of operations of kind k.
func (s Script) Count(k OpKind) int {
	n := 0
	for _, op := range s.Ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// Structural reports whether the script inserts, removes or moves rows.
func (s Script) Structural() bool {
	for _, op := range s.Ops {
		if op.Kind != OpChange {
			return true
		}
	}
	return false
}

type pair struct{ oldIdx, newIdx int }

// Diff computes the edit script turning oldList into newList.
//
// Rows are matched by the identity policy using a longest common subsequence
// over the identity keys; ties prefer the earliest match in the old list.
// Rows with the same key that fall outside the common subsequence become
// moves. Matched rows whose displayed content differs get a Change carrying
// only the changed groups.
func Diff(oldList, newList []*entity.Book, identity Identity) (Script, error) {
	if identity.IsZero() {
		return Script{}, ErrIdentityPolicyRequired
	}

	oldKeys := keys(oldList, identity)
	newKeys := keys(newList, identity)

	anchors := lcs(oldKeys, newKeys)

	oldMatched := make([]bool, len(oldList))
	newMatched := make([]bool, len(newList))
	for _, p := range anchors {
		oldMatched[p.oldIdx] = true
		newMatched[p.newIdx] = true
	}

	// Pair the leftover rows that share a key; these are moves.
	pending := make(map[string][]int)
	for i, k := range oldKeys {
		if !oldMatched[i] {
			pending[k] = append(pending[k], i)
		}
	}
	var moves []pair
	for j, k := range newKeys {
		if newMatched[j] {
			continue
		}
		if q := pending[k]; len(q) > 0 {
			moves = append(moves, pair{oldIdx: q[0], newIdx: j})
			pending[k] = q[1:]
			oldMatched[q[0]] = true
			newMatched[j] = true
		}
	}

	var ops []Op

	// Removes, from the end so earlier indices stay valid.
	for i := len(oldList) - 1; i >= 0; i-- {
		if !oldMatched[i] {
			ops = append(ops, Op{Kind: OpRemove, From: i, To: -1, Record: oldList[i]})
		}
	}

	ops = append(ops, planMoves(len(oldList), oldMatched, anchors, moves, newList)...)

	for j := range newList {
		if !newMatched[j] {
			ops = append(ops, Op{Kind: OpInsert, From: -1, To: j, Record: newList[j]})
		}
	}

	matched := append(slices.Clone(anchors), moves...)
	slices.SortFunc(matched, func(a, b pair) int { return a.newIdx - b.newIdx })
	for _, p := range matched {
		if payload := ContentPayload(oldList[p.oldIdx], newList[p.newIdx]); !payload.IsEmpty() {
			ops = append(ops, Op{Kind: OpChange, From: p.newIdx, To: p.newIdx, Record: newList[p.newIdx], Payload: payload})
		}
	}

	return Script{Ops: ops}, nil
}

// planMoves simulates the list after removals and emits one move per moved
// row, in ascending new index. A moved row is placed right after the
// settled row with the largest new index below its own; settled rows are
// the anchors plus rows already moved, and they stay in new-list order.
func planMoves(oldLen int, oldMatched []bool, anchors, moves []pair, newList []*entity.Book) []Op {
	if len(moves) == 0 {
		return nil
	}

	target := make(map[int]int, len(anchors)+len(moves)) // old index -> new index
	for _, p := range anchors {
		target[p.oldIdx] = p.newIdx
	}
	for _, p := range moves {
		target[p.oldIdx] = p.newIdx
	}

	type slot struct {
		newIdx  int
		settled bool
	}
	current := make([]slot, 0, len(target))
	for i := 0; i < oldLen; i++ {
		if oldMatched[i] {
			current = append(current, slot{newIdx: target[i]})
		}
	}
	for _, p := range anchors {
		for k := range current {
			if current[k].newIdx == p.newIdx {
				current[k].settled = true
				break
			}
		}
	}

	sorted := slices.Clone(moves)
	slices.SortFunc(sorted, func(a, b pair) int { return a.newIdx - b.newIdx })

	ops := make([]Op, 0, len(sorted))
	for _, m := range sorted {
		from := slices.IndexFunc(current, func(s slot) bool { return s.newIdx == m.newIdx })
		current = slices.Delete(current, from, from+1)

		to := 0
		for k, s := range current {
			if s.settled && s.newIdx < m.newIdx {
				to = k + 1
			}
		}
		current = slices.Insert(current, to, slot{newIdx: m.newIdx, settled: true})
		ops = append(ops, Op{Kind: OpMove, From: from, To: to, Record: newList[m.newIdx]})
	}
	return ops
}

func keys(list []*entity.Book, identity Identity) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = identity.Key(b)
	}
	return out
}

// lcs returns the matched index pairs of a longest common subsequence of a
// and b. Walking forward over a suffix table and taking equal keys as soon
// as they meet gives the leftmost-earliest matching.
func lcs(a, b []string) []pair {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	// dp[i][j] = LCS length of a[i:] and b[j:]
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else {
				dp[i][j] = max(dp[i+1][j], dp[i][j+1])
			}
		}
	}

	out := make([]pair, 0, dp[0][0])
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			out = append(out, pair{oldIdx: i, newIdx: j})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}
	return out
}

// Apply runs script against list and returns the resulting list. The input
// slice is not modified.
func Apply(list []*entity.Book, script Script) ([]*entity.Book, error) {
	out := slices.Clone(list)
	for n, op := range script.Ops {
		switch op.Kind {
		case OpRemove:
			if op.From < 0 || op.From >= len(out) {
				return nil, fmt.Errorf("%w: op %d remove at %d, len %d", ErrInvalidScript, n, op.From, len(out))
			}
			out = slices.Delete(out, op.From, op.From+1)
		case OpMove:
			if op.From < 0 || op.From >= len(out) || op.To < 0 || op.To >= len(out) {
				return nil, fmt.Errorf("%w: op %d move %d->%d, len %d", ErrInvalidScript, n, op.From, op.To, len(out))
			}
			row := out[op.From]
			if op.Record != nil {
				row = op.Record
			}
			out = slices.Delete(out, op.From, op.From+1)
			out = slices.Insert(out, op.To, row)
		case OpInsert:
			if op.To < 0 || op.To > len(out) {
				return nil, fmt.Errorf("%w: op %d insert at %d, len %d", ErrInvalidScript, n, op.To, len(out))
			}
			out = slices.Insert(out, op.To, op.Record)
		case OpChange:
			if op.To < 0 || op.To >= len(out) {
				return nil, fmt.Errorf("%w: op %d change at %d, len %d", ErrInvalidScript, n, op.To, len(out))
			}
			out[op.To] = op.Record
		default:
			return nil, fmt.Errorf("%w: op %d has kind %v", ErrInvalidScript, n, op.Kind)
		}
	}
	return out, nil
}
