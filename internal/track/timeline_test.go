package track

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
)

const horizon = 120

var _ = Describe("Timeline", func() {
	var (
		reg    *Registry
		h      Handle
		opts   Options
		ground grid.Line
		cached []physics.Rider
	)

	// edit applies fn under a write handle and folds the change in.
	edit := func(fn func(w *Writer)) int {
		var first int
		Expect(reg.WithWrite(h, func(w *Writer) error {
			fn(w)
			first = w.NotifyChanged()
			return nil
		})).To(Succeed())
		return first
	}

	read := func(fn func(r *Reader)) {
		Expect(reg.WithRead(h, func(r *Reader) error {
			fn(r)
			return nil
		})).To(Succeed())
	}

	framesNow := func() []physics.Rider {
		var out []physics.Rider
		read(func(r *Reader) {
			var err error
			out, err = r.Frames(0, horizon)
			Expect(err).NotTo(HaveOccurred())
		})
		return out
	}

	BeforeEach(func() {
		opts = DefaultOptions()
		ground = horizontal(20, -50, 600)
		reg = NewRegistry()

		var err error
		h, err = reg.Create(opts)
		Expect(err).NotTo(HaveOccurred())
		edit(func(w *Writer) {
			_, err := w.AddLine(ground)
			Expect(err).NotTo(HaveOccurred())
		})
		cached = framesNow()
	})

	It("starts with only frame 0 valid", func() {
		fresh, err := New(DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(fresh.timeline.FirstInvalidFrame()).To(Equal(1))
		Expect(fresh.timeline.State(0)).To(Equal(Valid))
		Expect(fresh.timeline.State(1)).To(Equal(Uncomputed))
	})

	It("caches every computed frame as valid", func() {
		read(func(r *Reader) {
			Expect(r.FirstInvalidFrame()).To(Equal(horizon + 1))
			Expect(r.FrameState(horizon)).To(Equal(Valid))
			Expect(r.FrameState(horizon + 1)).To(Equal(Uncomputed))
		})
	})

	It("matches a fresh simulation", func() {
		fresh := simulateFresh(opts, []grid.Line{ground}, horizon)
		Expect(firstDifference(cached, fresh)).To(Equal(-1))
	})

	Context("when an edit is far from the rider", func() {
		It("keeps the first invalid frame", func() {
			first := edit(func(w *Writer) {
				_, err := w.AddLine(horizontal(1000, 1000, 1100))
				Expect(err).NotTo(HaveOccurred())
			})
			Expect(first).To(Equal(horizon + 1))
			Expect(framesNow()).To(HaveLen(horizon + 1))
			Expect(firstDifference(framesNow(), cached)).To(Equal(-1))
		})
	})

	Context("when an edit overlaps the consulted cells without acting on the rider", func() {
		It("keeps the first invalid frame", func() {
			// solid only from the right, the rider is always to its left
			wall := *grid.NewLine(0, grid.Standard, geom.V(-5, -100), geom.V(-5, 100))
			first := edit(func(w *Writer) {
				_, err := w.AddLine(wall)
				Expect(err).NotTo(HaveOccurred())
			})
			Expect(first).To(Equal(horizon + 1))

			read(func(r *Reader) {
				Expect(r.Timeline().PendingCells()).To(BeZero())
			})
		})
	})

	Context("when an edit changes the motion", func() {
		var shelf grid.Line

		BeforeEach(func() {
			shelf = horizontal(10, -50, 600)
		})

		It("invalidates from the first frame that differs", func() {
			fresh := simulateFresh(opts, []grid.Line{ground, shelf}, horizon)
			want := firstDifference(cached, fresh)
			Expect(want).To(BeNumerically(">", 1))

			first := edit(func(w *Writer) {
				_, err := w.AddLine(shelf)
				Expect(err).NotTo(HaveOccurred())
			})
			Expect(first).To(Equal(want))

			read(func(r *Reader) {
				Expect(r.FrameState(want - 1)).To(Equal(Valid))
				Expect(r.FrameState(want)).To(Equal(Stale))
				for i := 0; i < want; i++ {
					got, err := r.Frame(i)
					Expect(err).NotTo(HaveOccurred())
					Expect(got.Equal(cached[i])).To(BeTrue(), "frame %d", i)
				}
			})

			Expect(firstDifference(framesNow(), fresh)).To(Equal(-1))
		})

		It("invalidates again when the line is removed", func() {
			var id int
			edit(func(w *Writer) {
				l, err := w.AddLine(shelf)
				Expect(err).NotTo(HaveOccurred())
				id = l.ID
			})
			_ = framesNow()

			first := edit(func(w *Writer) {
				_, err := w.RemoveLine(id)
				Expect(err).NotTo(HaveOccurred())
			})
			Expect(first).To(BeNumerically("<=", horizon))
			Expect(firstDifference(framesNow(), cached)).To(Equal(-1))
		})

		It("never raises the first invalid frame between edits", func() {
			seen := []int{}
			seen = append(seen, edit(func(w *Writer) {
				_, err := w.AddLine(shelf)
				Expect(err).NotTo(HaveOccurred())
			}))
			seen = append(seen, edit(func(w *Writer) {
				_, err := w.AddLine(horizontal(1000, 1000, 1100))
				Expect(err).NotTo(HaveOccurred())
			}))
			seen = append(seen, edit(func(w *Writer) {
				_, err := w.AddLine(horizontal(5, 300, 600))
				Expect(err).NotTo(HaveOccurred())
			}))
			seen = append(seen, edit(func(w *Writer) {}))

			for i := 1; i < len(seen); i++ {
				Expect(seen[i]).To(BeNumerically("<=", seen[i-1]))
			}
		})

		It("batches several edits into one notification", func() {
			var before int
			Expect(reg.WithWrite(h, func(w *Writer) error {
				if _, err := w.AddLine(horizontal(1000, 1000, 1100)); err != nil {
					return err
				}
				if _, err := w.AddLine(shelf); err != nil {
					return err
				}
				before = w.FirstInvalidFrame()
				Expect(w.Timeline().PendingCells()).To(BeNumerically(">", 0))
				return nil
			})).To(Succeed())
			Expect(before).To(Equal(horizon + 1))

			fresh := simulateFresh(opts, []grid.Line{ground, horizontal(1000, 1000, 1100), shelf}, horizon)
			read(func(r *Reader) {
				Expect(r.NotifyChanged()).To(Equal(firstDifference(cached, fresh)))
			})
		})
	})

	Context("with scenery", func() {
		It("never touches the simulation", func() {
			first := edit(func(w *Writer) {
				_, err := w.AddLine(scenery(geom.V(-50, 10), geom.V(600, 10)))
				Expect(err).NotTo(HaveOccurred())
				Expect(w.Timeline().PendingCells()).To(BeZero())
			})
			Expect(first).To(Equal(horizon + 1))

			read(func(r *Reader) {
				Expect(r.LineCount()).To(Equal(2))
				Expect(r.SimulationLines()).To(Equal(1))
				Expect(r.LinesInRect(geom.RectXYWH(0, 5, 10, 10), true)).To(HaveLen(1))
			})
			Expect(firstDifference(framesNow(), cached)).To(Equal(-1))
		})
	})

	Context("when the start moves", func() {
		It("rebuilds from frame 1", func() {
			Expect(reg.WithWrite(h, func(w *Writer) error {
				w.SetStart(geom.V(0, -20), physics.StartingMomentum)
				return nil
			})).To(Succeed())

			read(func(r *Reader) {
				Expect(r.FirstInvalidFrame()).To(Equal(1))
				Expect(r.Timeline().Cached()).To(Equal(1))
				start, err := r.Frame(0)
				Expect(err).NotTo(HaveOccurred())
				Expect(start.Points[physics.SledTL].Pos).To(Equal(geom.V(0, -20)))
			})
		})
	})

	Context("when the grid is repartitioned", func() {
		It("revalidates frames against the new cells", func() {
			var first, version int
			Expect(reg.WithWrite(h, func(w *Writer) error {
				var err error
				first, err = w.Repartition(30)
				version = w.GridVersion()
				return err
			})).To(Succeed())

			Expect(version).To(Equal(2))
			Expect(first).To(Equal(horizon + 1))
			Expect(firstDifference(framesNow(), cached)).To(Equal(-1))
		})

		It("rejects an invalid cell size", func() {
			Expect(reg.WithWrite(h, func(w *Writer) error {
				_, err := w.Repartition(0)
				return err
			})).To(MatchError(grid.ErrInvalidCellSize))
		})
	})

	Context("with retention", func() {
		It("caches at most the retained frames", func() {
			opts.Retention = 10
			rh, err := reg.Create(opts)
			Expect(err).NotTo(HaveOccurred())

			var got physics.Rider
			Expect(reg.WithWrite(rh, func(w *Writer) error {
				if _, err := w.AddLine(ground); err != nil {
					return err
				}
				w.NotifyChanged()
				got, err = w.Frame(horizon)
				return err
			})).To(Succeed())

			Expect(got.Equal(cached[horizon])).To(BeTrue())
			Expect(reg.WithRead(rh, func(r *Reader) error {
				Expect(r.Timeline().Cached()).To(Equal(10))
				Expect(r.FrameState(9)).To(Equal(Valid))
				Expect(r.FrameState(horizon)).To(Equal(Uncomputed))
				return nil
			})).To(Succeed())
		})

		It("plays a long ride past the window in linear time", func() {
			const long = 3000
			lines := []grid.Line{horizontal(20, -50, 5000)}
			want := simulateFresh(opts, lines, long)

			opts.Retention = 10
			rh, err := reg.Create(opts)
			Expect(err).NotTo(HaveOccurred())

			var got []physics.Rider
			var steps int
			Expect(reg.WithWrite(rh, func(w *Writer) error {
				if _, err := w.AddLine(lines[0]); err != nil {
					return err
				}
				w.NotifyChanged()
				got, err = w.Frames(0, long)
				steps = w.Timeline().simulated
				return err
			})).To(Succeed())

			Expect(firstDifference(got, want)).To(Equal(-1))
			Expect(steps).To(BeNumerically("<=", long))
		})

		It("does not continue past the window from a pose an edit made stale", func() {
			opts.Retention = 10
			rh, err := reg.Create(opts)
			Expect(err).NotTo(HaveOccurred())
			shelf := horizontal(10, -50, 600)
			want := simulateFresh(opts, []grid.Line{ground, shelf}, horizon)

			Expect(reg.WithWrite(rh, func(w *Writer) error {
				if _, err := w.AddLine(ground); err != nil {
					return err
				}
				w.NotifyChanged()
				if _, err := w.Frames(0, horizon-1); err != nil {
					return err
				}
				if _, err := w.AddLine(shelf); err != nil {
					return err
				}
				w.NotifyChanged()
				got, err := w.Frame(horizon)
				Expect(got.Equal(want[horizon])).To(BeTrue())
				return err
			})).To(Succeed())
		})
	})

	It("rejects negative frames", func() {
		read(func(r *Reader) {
			_, err := r.Frame(-1)
			Expect(err).To(MatchError(ErrNegativeFrame))
		})
	})
})
