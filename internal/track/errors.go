package track

import "errors"

var (
	// ErrReleased is the panic value for use of a released Reader or Writer.
	ErrReleased = errors.New("track: use of released reader/writer")

	// ErrUnknownTrack indicates a handle that is not (or no longer) registered.
	ErrUnknownTrack = errors.New("track: unknown track handle")

	// ErrNegativeFrame indicates a frame index below zero.
	ErrNegativeFrame = errors.New("track: negative frame index")

	// ErrUnknownLine indicates a line ID that is not part of the track.
	ErrUnknownLine = errors.New("track: unknown line")

	// ErrDuplicateLine indicates an insert with an ID already in use.
	ErrDuplicateLine = errors.New("track: duplicate line id")

	// ErrInvalidLine indicates a line with an unknown type or a
	// non-finite endpoint.
	ErrInvalidLine = errors.New("track: invalid line")
)
