// Package pagination provides the page arithmetic shared by the catalog client
// and the browsing session: offsets, the forward page-bound estimate, button
// enablement and the persisted page state.
package pagination

// CalculateOffset calculates the item offset based on page number and limit.
// Page numbers are 1-based, so page 1 has offset 0.
//
// Formula: offset = (page - 1) * limit
//
// Examples:
//   - Page 1, Limit 10 -> Offset 0
//   - Page 2, Limit 10 -> Offset 10
//   - Page 3, Limit 40 -> Offset 80
func CalculateOffset(page, limit int) int {
	return (page - 1) * limit
}

// ToZeroBased converts a displayed (1-based) page index to the internal one.
func ToZeroBased(page int) int {
	return page - 1
}

// ToOneBased converts an internal (0-based) page index to the displayed one.
func ToOneBased(index int) int {
	return index + 1
}

// EstimateUpperBound derives the highest page index believed to hold results
// from one catalog response. All indices are 0-based.
//
// The catalog never reports a page count, so the bound is a forward estimate:
//
//	pagesRemaining = floor((totalItems - itemsReturned) / pageSize)
//	bound          = currentIndex + pagesRemaining
//
// The prior bound is returned unchanged when totalItems or itemsReturned is
// not positive, or when pageSize is invalid. The estimate can undercount and
// is used as-is; when the catalog returns more items than it reports, the
// division floors below zero and the bound lands before currentIndex.
//
// Examples:
//   - total 47, returned 10, size 10, current 0 -> 3
//   - total 3, returned 10, size 10, current 2 -> 1
//   - total 0, prior 5 -> 5
func EstimateUpperBound(totalItems, itemsReturned, pageSize, currentIndex, priorIndex int) int {
	if totalItems <= 0 || itemsReturned <= 0 || pageSize <= 0 {
		return priorIndex
	}
	return currentIndex + floorDiv(totalItems-itemsReturned, pageSize)
}

// floorDiv divides rounding toward negative infinity. d must be positive.
func floorDiv(n, d int) int {
	q := n / d
	if n%d != 0 && n < 0 {
		q--
	}
	return q
}
