package query

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// DefaultSearchTimeLowerBound returns the lower bound of a query that sets none.
func DefaultSearchTimeLowerBound() int64 { return math.MinInt64 }

// DefaultSearchTimeUpperBound returns the upper bound of a query that sets none.
func DefaultSearchTimeUpperBound() int64 { return math.MaxInt64 }

// DefaultSearchTimeTerminationMargin returns the termination margin of a query that sets none.
func DefaultSearchTimeTerminationMargin() int64 { return 0 }

// Query is an immutable search filter. The zero value is not valid; use DefaultQuery or a
// Builder.
//
// A lower bound greater than the upper bound is allowed and matches nothing.
type Query struct {
	lowerBound        int64
	upperBound        int64
	terminationMargin int64
	wildcardQueries   []WildcardQuery
}

// DefaultQuery returns a query that matches every event.
func DefaultQuery() *Query {
	return &Query{
		lowerBound:        DefaultSearchTimeLowerBound(),
		upperBound:        DefaultSearchTimeUpperBound(),
		terminationMargin: DefaultSearchTimeTerminationMargin(),
	}
}

// SearchTimeLowerBound returns the inclusive lower time bound in epoch milliseconds.
func (q *Query) SearchTimeLowerBound() int64 {
	return q.lowerBound
}

// SearchTimeUpperBound returns the inclusive upper time bound in epoch milliseconds.
func (q *Query) SearchTimeUpperBound() int64 {
	return q.upperBound
}

// SearchTimeTerminationMargin returns the margin past the upper bound after which an
// ordered stream can stop being decoded.
func (q *Query) SearchTimeTerminationMargin() int64 {
	return q.terminationMargin
}

// WildcardQueries returns a copy of the wildcard patterns, in the order they were added.
func (q *Query) WildcardQueries() []WildcardQuery {
	return slices.Clone(q.wildcardQueries)
}

// MatchesTimeRange reports whether lower <= timestamp <= upper.
func (q *Query) MatchesTimeRange(timestamp int64) bool {
	return q.lowerBound <= timestamp && timestamp <= q.upperBound
}

// MatchesWildcardQueries reports whether message matches any wildcard pattern. A query
// without patterns matches every message.
func (q *Query) MatchesWildcardQueries(message string) bool {
	if len(q.wildcardQueries) == 0 {
		return true
	}

	for _, wq := range q.wildcardQueries {
		if wq.Matches(message) {
			return true
		}
	}

	return false
}

// Matches reports whether an event with the given timestamp and message passes both the
// time filter and the wildcard filter.
func (q *Query) Matches(timestamp int64, message string) bool {
	return q.MatchesTimeRange(timestamp) && q.MatchesWildcardQueries(message)
}

// TimestampSafelyOutsideTimeRange reports whether timestamp is strictly greater than the
// upper bound plus the termination margin. The sum saturates at math.MaxInt64.
func (q *Query) TimestampSafelyOutsideTimeRange(timestamp int64) bool {
	limit := q.upperBound
	if limit > 0 && q.terminationMargin > math.MaxInt64-limit {
		limit = math.MaxInt64
	} else {
		limit += q.terminationMargin
	}

	return timestamp > limit
}

// Equal reports whether both queries have the same bounds, margin and patterns in the
// same order.
func (q *Query) Equal(other *Query) bool {
	if q == nil || other == nil {
		return q == other
	}

	return q.lowerBound == other.lowerBound &&
		q.upperBound == other.upperBound &&
		q.terminationMargin == other.terminationMargin &&
		slices.Equal(q.wildcardQueries, other.wildcardQueries)
}

func (q *Query) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query(lower=%d, upper=%d, margin=%d, wildcards=[", q.lowerBound, q.upperBound, q.terminationMargin)
	for i, wq := range q.wildcardQueries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(wq.String())
	}
	sb.WriteString("])")

	return sb.String()
}
