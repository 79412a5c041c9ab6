package physics_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/physics"
)

const frameDt = 1.0 / 60.0

var _ = Describe("Simulator", func() {
	var (
		shape  container.Shape
		params physics.Params
		s      *physics.Simulator
	)

	BeforeEach(func() {
		shape = container.DefaultShape()
		params = physics.DefaultParams()
		var err error
		s, err = physics.New(500, shape, params, rand.New(rand.NewSource(7)))
		Expect(err).NotTo(HaveOccurred())
	})

	stepUntilSettled := func(maxFrames int) {
		for f := 0; f < maxFrames && s.HasActiveStars(); f++ {
			s.Step(frameDt)
		}
	}

	Describe("dropping a single star", func() {
		It("comes to rest on the floor", func() {
			idx, err := s.AddStar(0, 5, 0)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 300; i++ {
				s.Step(frameDt)
			}

			Expect(s.IsSettled(idx)).To(BeTrue())
			Expect(s.Position(idx).Y).To(BeNumerically("~", shape.FloorHeight+params.EffectiveRadius, 1e-2))
		})
	})

	Describe("capacity", func() {
		It("rejects the star after the last slot", func() {
			for i := 0; i < 500; i++ {
				_, err := s.AddStar(0, 4, 0)
				Expect(err).NotTo(HaveOccurred())
			}
			idx, err := s.AddStar(0, 4, 0)
			Expect(err).To(MatchError(dynamo.ErrStoreFull))
			Expect(idx).To(Equal(-1))
			Expect(s.Count()).To(Equal(500))
		})
	})

	Describe("restoring a settled star", func() {
		It("is frozen in place immediately", func() {
			idx, err := s.AddSettledStar(1.0, 2.0, 3.0)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.IsSettled(idx)).To(BeTrue())
			Expect(s.Position(idx)).To(Equal(r3.Vec{X: 1, Y: 2, Z: 3}))

			s.Step(frameDt)
			Expect(s.Position(idx)).To(Equal(r3.Vec{X: 1, Y: 2, Z: 3}))
		})
	})

	Describe("stacking", func() {
		It("keeps two stars dropped on the same axis apart at rest", func() {
			a, _ := s.AddStar(0, 1.0, 0)
			b, _ := s.AddStar(0, 2.0, 0)
			stepUntilSettled(1000)

			Expect(s.IsSettled(a)).To(BeTrue())
			Expect(s.IsSettled(b)).To(BeTrue())
			gap := r3.Norm(r3.Sub(s.Position(a), s.Position(b)))
			Expect(gap).To(BeNumerically(">=", 2*params.EffectiveRadius-5e-3))
		})
	})

	Describe("a full jar", func() {
		BeforeEach(func() {
			for i := 0; i < 120; i++ {
				angle := float64(i) * 2.4
				_, err := s.AddStar(0.25*math.Cos(angle), 3.4+0.04*float64(i), 0.25*math.Sin(angle))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("never lets settled stars drift", func() {
			frozen := map[int]r3.Vec{}
			for f := 0; f < 400; f++ {
				s.Step(frameDt)
				for i := 0; i < s.Count(); i++ {
					p, seen := frozen[i]
					if seen {
						Expect(s.Position(i)).To(Equal(p), "star %d moved after settling", i)
						continue
					}
					if s.IsSettled(i) {
						frozen[i] = s.Position(i)
					}
				}
			}
			Expect(frozen).NotTo(BeEmpty())
		})

		It("settles everything on demand", func() {
			s.Step(frameDt)
			s.SettleAll()
			Expect(s.HasActiveStars()).To(BeFalse())

			before := make([]r3.Vec, s.Count())
			for i := range before {
				before[i] = s.Position(i)
			}
			s.Step(frameDt)
			for i := range before {
				Expect(s.Position(i)).To(Equal(before[i]))
			}
		})

		It("eventually goes idle", func() {
			stepUntilSettled(2000)
			Expect(s.HasActiveStars()).To(BeFalse())
		})
	})

	Describe("reset", func() {
		It("empties the store and restarts indices at zero", func() {
			s.AddStar(0, 3, 0)
			s.AddSettledStar(0, 0.2, 0)
			s.Reset()
			Expect(s.Count()).To(BeZero())

			idx, err := s.AddStar(0, 3, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(idx).To(BeZero())
		})
	})
})
