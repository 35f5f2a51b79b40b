// Package query describes search filters for IR streams.
//
// A Query combines an inclusive time range with a set of wildcard patterns. It is built
// with a Builder and is immutable once built, so one Query can be shared by any number of
// readers and goroutines.
//
//	q := query.NewBuilder().
//	    SetSearchTimeLowerBound(start).
//	    SetSearchTimeUpperBound(end).
//	    AddWildcardQuery(query.NewWildcardQuery("*ERROR*", false)).
//	    BuildQuery()
//
// # Early Termination
//
// TimestampSafelyOutsideTimeRange reports whether a timestamp lies beyond the upper bound
// plus the termination margin. Decoders may stop reading once it returns true, but only
// when the stream is known to be ordered by time; the ir and stream packages make this an
// explicit opt-in.
package query
