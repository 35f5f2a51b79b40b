package query

import (
	"fmt"
	"slices"

	"github.com/arloliu/clpir/errs"
)

// Builder accumulates the fields of a Query. Setters return the builder for chaining.
//
// BuildQuery snapshots the current state; later changes to the builder never affect a
// query it has already built.
type Builder struct {
	lowerBound        int64
	upperBound        int64
	terminationMargin int64
	wildcardQueries   []WildcardQuery
}

// NewBuilder returns a builder holding the default values.
func NewBuilder() *Builder {
	b := &Builder{}
	b.Reset()

	return b
}

// SearchTimeLowerBound returns the current lower bound.
func (b *Builder) SearchTimeLowerBound() int64 { return b.lowerBound }

// SearchTimeUpperBound returns the current upper bound.
func (b *Builder) SearchTimeUpperBound() int64 { return b.upperBound }

// SearchTimeTerminationMargin returns the current termination margin.
func (b *Builder) SearchTimeTerminationMargin() int64 { return b.terminationMargin }

// WildcardQueries returns a copy of the patterns added so far.
func (b *Builder) WildcardQueries() []WildcardQuery {
	return slices.Clone(b.wildcardQueries)
}

// SetSearchTimeLowerBound sets the inclusive lower bound. It is not checked against the
// upper bound.
func (b *Builder) SetSearchTimeLowerBound(ts int64) *Builder {
	b.lowerBound = ts
	return b
}

// SetSearchTimeUpperBound sets the inclusive upper bound. It is not checked against the
// lower bound.
func (b *Builder) SetSearchTimeUpperBound(ts int64) *Builder {
	b.upperBound = ts
	return b
}

// SetSearchTimeTerminationMargin sets the termination margin.
//
// Returns:
//   - *Builder: The builder, for chaining
//   - error: ErrInvalidQueryParameter if margin is negative; the previous margin is kept
func (b *Builder) SetSearchTimeTerminationMargin(margin int64) (*Builder, error) {
	if margin < 0 {
		return b, fmt.Errorf("%w: termination margin %d is negative", errs.ErrInvalidQueryParameter, margin)
	}
	b.terminationMargin = margin

	return b, nil
}

// AddWildcardQuery appends a pattern. Duplicates are kept.
func (b *Builder) AddWildcardQuery(wq WildcardQuery) *Builder {
	b.wildcardQueries = append(b.wildcardQueries, wq)
	return b
}

// AddWildcardQueries appends patterns in the given order. Duplicates are kept.
func (b *Builder) AddWildcardQueries(wqs ...WildcardQuery) *Builder {
	b.wildcardQueries = append(b.wildcardQueries, wqs...)
	return b
}

// ResetSearchTimeLowerBound restores the default lower bound.
func (b *Builder) ResetSearchTimeLowerBound() *Builder {
	b.lowerBound = DefaultSearchTimeLowerBound()
	return b
}

// ResetSearchTimeUpperBound restores the default upper bound.
func (b *Builder) ResetSearchTimeUpperBound() *Builder {
	b.upperBound = DefaultSearchTimeUpperBound()
	return b
}

// ResetSearchTimeTerminationMargin restores the default termination margin.
func (b *Builder) ResetSearchTimeTerminationMargin() *Builder {
	b.terminationMargin = DefaultSearchTimeTerminationMargin()
	return b
}

// ResetWildcardQueries removes all patterns.
func (b *Builder) ResetWildcardQueries() *Builder {
	b.wildcardQueries = nil
	return b
}

// Reset restores every field to its default.
func (b *Builder) Reset() *Builder {
	return b.ResetSearchTimeLowerBound().
		ResetSearchTimeUpperBound().
		ResetSearchTimeTerminationMargin().
		ResetWildcardQueries()
}

// BuildQuery returns a new Query holding a copy of the builder state.
func (b *Builder) BuildQuery() *Query {
	return &Query{
		lowerBound:        b.lowerBound,
		upperBound:        b.upperBound,
		terminationMargin: b.terminationMargin,
		wildcardQueries:   slices.Clone(b.wildcardQueries),
	}
}
