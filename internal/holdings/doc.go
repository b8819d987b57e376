// Package holdings implements the portfolio data pipeline: parsing a
// brokerage CSV export into a column-addressed dataset, cleaning and
// normalizing it, filtering by account and symbol selections, and
// aggregating per-account totals.
//
// The pipeline stages are pure functions over immutable Dataset values,
// which makes their results safe to memoize (see Cache).
package holdings
