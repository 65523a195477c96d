// Package gaps detects and backfills holes in per-ticker websocket
// sequence numbers.
//
// Detection is a pure function over the observed sequence set: with
// fewer than two sequences there is nothing to compare, otherwise every
// integer strictly between the minimum and maximum that was never
// observed is a gap. Filling is best effort: a Recoverer fetches the
// missed updates when the upstream supports it, and recovered rows are
// appended with source="backfill" and the recovered sequence number.
package gaps
