package physics

import (
	"errors"
	"fmt"
)

// Domain errors for topology validation.
var (
	// ErrBoneIndex indicates a bone referencing a body point that does not exist.
	ErrBoneIndex = errors.New("physics: bone index out of range")

	// ErrBoneRest indicates a bone with a non-positive or non-finite rest length.
	ErrBoneRest = errors.New("physics: invalid bone rest length")

	// ErrSelfBone indicates a bone joining a point to itself.
	ErrSelfBone = errors.New("physics: bone joins a point to itself")

	// ErrFriction indicates a friction table that does not match the body.
	ErrFriction = errors.New("physics: friction table does not match body points")

	// ErrEmptyBody indicates a topology without body points.
	ErrEmptyBody = errors.New("physics: topology has no body points")
)

// TopologyError wraps a validation failure with the offending bone.
type TopologyError struct {
	Bone    int
	Wrapped error
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("bone %d: %v", e.Bone, e.Wrapped)
}

func (e *TopologyError) Unwrap() error {
	return e.Wrapped
}
