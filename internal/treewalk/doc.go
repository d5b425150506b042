// Package treewalk walks directory trees and aggregates size statistics.
//
// A Walker is a pull-based cursor over a directory tree: each call to Next
// yields one Entry in pre-order depth-first order, listing directories lazily
// as the walk reaches them. Listing order is whatever the filesystem returns,
// so callers that need deterministic output must sort downstream.
//
// Symbolic links are never followed. A link is reported as a leaf entry sized
// by its own metadata, which also rules out cycles through linked directories.
//
// Children that vanish or become unreadable between listing and stat are
// skipped and recorded as ChildError values; only failures on the root abort
// a walk. WalkParallel offers the same semantics on top of fastwalk.
package treewalk
