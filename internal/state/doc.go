// Package state holds the mutable state bags that compiled expressions read
// and update at invocation time: the per-owner locals bag and the
// process-wide globals bag. Bags are safe for concurrent use from multiple
// dispatch goroutines.
package state
