// Package track owns the mutable line set, its spatial indexes and the
// simulated timeline.
//
// Tracks live in a [Registry] and are reached only through scoped handles:
//
//   - [Reader]: shared access for geometry queries, frame playback and export
//   - [Writer]: exclusive access that also inserts and removes lines
//
// Readers and writers hold a registry [Handle] rather than the track itself.
// Releasing one drops the handle; any later call panics with [ErrReleased].
//
// # Timeline
//
// The [Timeline] caches one pose per frame. Writers record the cells each
// edit touches; [Reader.NotifyChanged] turns them into a region, re-simulates
// only cached frames whose consulted cells overlap it and lowers the first
// invalid frame to the earliest one whose result actually changed.
package track
