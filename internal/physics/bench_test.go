package physics

import (
	"math/rand"
	"testing"

	"github.com/san-kum/stardrop/internal/container"
)

// benchJar fills a simulator with n falling stars spread over the body.
func benchJar(b *testing.B, n int) *Simulator {
	b.Helper()
	rng := rand.New(rand.NewSource(1))
	s, err := New(n, container.DefaultShape(), DefaultParams(), rng)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < n; i++ {
		x := (rng.Float64()*2 - 1) * 0.7
		z := (rng.Float64()*2 - 1) * 0.7
		if _, err := s.AddStar(x, 0.2+rng.Float64()*2, z); err != nil {
			b.Fatal(err)
		}
	}
	return s
}

func benchmarkStep(b *testing.B, n int) {
	s := benchJar(b, n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step(1.0 / 60)
	}
}

func BenchmarkStep50(b *testing.B)  { benchmarkStep(b, 50) }
func BenchmarkStep200(b *testing.B) { benchmarkStep(b, 200) }
func BenchmarkStep500(b *testing.B) { benchmarkStep(b, 500) }

func BenchmarkStepSettled(b *testing.B) {
	s := benchJar(b, 500)
	s.SettleAll()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step(1.0 / 60)
	}
}
