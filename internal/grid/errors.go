package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleVersion indicates cell coordinates derived against an older
	// partitioning of the grid.
	ErrStaleVersion = errors.New("grid: stale grid version")

	// ErrInvalidCellSize indicates a non-positive or non-finite cell size.
	ErrInvalidCellSize = errors.New("grid: cell size must be positive")

	// ErrDuplicateLine indicates an insert of a line ID already indexed.
	ErrDuplicateLine = errors.New("grid: line already indexed")

	// ErrUnknownLine indicates a removal of a line that is not indexed.
	ErrUnknownLine = errors.New("grid: line not indexed")
)

// LineTypeError reports an unrecognised line type name.
type LineTypeError struct {
	Name string
}

func (e *LineTypeError) Error() string {
	return fmt.Sprintf("grid: unknown line type %q", e.Name)
}
