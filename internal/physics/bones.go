package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/ridersim/internal/geom"
)

// Bone is a distance constraint between two body points. Rest is the
// effective rest length; repel bones are built with half the distance
// between their points.
type Bone struct {
	A, B      int
	Rest      float64
	Breakable bool // stops acting for good once overstretched
	Repel     bool // only pushes apart
}

// NewBone measures the rest length of a bone between a and b in body.
func NewBone(body []geom.Vec2, a, b int, breakable, repel bool) Bone {
	rest := body[a].Sub(body[b]).Length()
	if repel {
		rest *= 0.5
	}
	return Bone{A: a, B: b, Rest: rest, Breakable: breakable, Repel: repel}
}

// Topology is the static description of a rider's body. It is shared by
// every frame and never mutated after validation.
type Topology struct {
	Body      []geom.Vec2 // rest pose
	Friction  []float64   // per point contact friction
	Bones     []Bone      // applied in order
	Endurance float64
}

// Validate checks every bone against the body. It runs once at startup;
// Simulate assumes a valid topology.
func (t *Topology) Validate() error {
	if len(t.Body) == 0 {
		return ErrEmptyBody
	}
	if t.Friction != nil && len(t.Friction) != len(t.Body) {
		return fmt.Errorf("%w: %d points, %d friction values", ErrFriction, len(t.Body), len(t.Friction))
	}
	for i, b := range t.Bones {
		switch {
		case b.A < 0 || b.A >= len(t.Body) || b.B < 0 || b.B >= len(t.Body):
			return &TopologyError{Bone: i, Wrapped: fmt.Errorf("%w: %d-%d with %d points", ErrBoneIndex, b.A, b.B, len(t.Body))}
		case b.A == b.B:
			return &TopologyError{Bone: i, Wrapped: ErrSelfBone}
		case !(b.Rest > 0) || math.IsInf(b.Rest, 0):
			return &TopologyError{Bone: i, Wrapped: fmt.Errorf("%w: %v", ErrBoneRest, b.Rest)}
		}
	}
	return nil
}

// MustValidate panics if the topology is malformed.
func (t *Topology) MustValidate() *Topology {
	if err := t.Validate(); err != nil {
		panic(err)
	}
	return t
}

func (t *Topology) friction(i int) float64 {
	if t.Friction == nil {
		return 0
	}
	return t.Friction[i]
}

// DefaultTopology builds the standard sled rider.
func DefaultTopology() *Topology {
	body := DefaultBody
	bone := func(a, b int) Bone { return NewBone(body, a, b, false, false) }
	breakable := func(a, b int) Bone { return NewBone(body, a, b, true, false) }
	repel := func(a, b int) Bone { return NewBone(body, a, b, false, true) }

	bones := []Bone{
		// sled
		bone(SledTL, SledBL),
		bone(SledBL, SledBR),
		bone(SledBR, SledTR),
		bone(SledTR, SledTL),
		bone(SledTL, SledBR),
		bone(SledTR, SledBL),

		// seat
		breakable(SledTL, BodyButt),
		breakable(SledBL, BodyButt),
		breakable(SledBR, BodyButt),

		// body
		bone(BodyShoulder, BodyButt),
		bone(BodyShoulder, BodyHandLeft),
		bone(BodyShoulder, BodyHandRight),
		bone(BodyButt, BodyFootLeft),
		bone(BodyButt, BodyFootRight),
		bone(BodyShoulder, BodyHandRight),

		// grip
		breakable(BodyShoulder, SledTL),
		breakable(SledTR, BodyHandLeft),
		breakable(SledTR, BodyHandRight),
		breakable(BodyFootLeft, SledBR),
		breakable(BodyFootRight, SledBR),

		repel(BodyShoulder, BodyFootLeft),
		repel(BodyShoulder, BodyFootRight),
	}

	t := &Topology{
		Body:      append([]geom.Vec2(nil), body...),
		Friction:  append([]float64(nil), DefaultFriction...),
		Bones:     bones,
		Endurance: EnduranceFactor,
	}
	return t.MustValidate()
}
