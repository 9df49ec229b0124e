package config

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// InRange reports an error unless lo <= v <= hi.
func InRange[T cmp.Ordered](v, lo, hi T) error {
	if lo > hi {
		return fmt.Errorf("invalid range [%v, %v]", lo, hi)
	}
	if v < lo || v > hi {
		return fmt.Errorf("%v out of range [%v, %v]", v, lo, hi)
	}
	return nil
}

// Between returns an InRange check for Env readers.
func Between[T cmp.Ordered](lo, hi T) func(T) error {
	return func(v T) error { return InRange(v, lo, hi) }
}

// OneOf returns a check accepting only the listed values.
func OneOf(allowed ...string) func(string) error {
	return func(v string) error {
		if slices.Contains(allowed, v) {
			return nil
		}
		return fmt.Errorf("%q is not one of [%s]", v, strings.Join(allowed, ", "))
	}
}
