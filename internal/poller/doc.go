// Package poller implements the REST polling loop.
//
// The poller:
//   - Fetches the open-market list on a fixed interval (bounded page size)
//   - Appends one snapshot per market with source="poll" and no sequence
//   - Skips malformed records and failed appends without aborting the batch
//   - Treats a failed fetch as one failed cycle; the loop never dies
package poller
