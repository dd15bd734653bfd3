package collision

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/galaxyfield/aimcore/logging"
)

func newTestRegistry(t *testing.T, deep bool) *Registry {
	t.Helper()
	r, err := NewRegistry(RegistryOptions{MinBoxSize: 0.5, DeepCompare: deep}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return r
}

func cube(t *testing.T, center r3.Vector, size float64) Box {
	t.Helper()
	b, err := NewBox(center, r3.Vector{X: size, Y: size, Z: size}, LayerNone)
	test.That(t, err, test.ShouldBeNil)
	return b
}

type countingListener struct {
	calls map[Category]int
}

func (l *countingListener) CollectionChanged(c Category, _ *Collection) {
	if l.calls == nil {
		l.calls = map[Category]int{}
	}
	l.calls[c]++
}
