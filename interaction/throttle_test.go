package interaction

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestThrottle(t *testing.T) {
	mockClock := clock.NewMock()
	th, err := NewThrottle(DefaultUpdateInterval, mockClock)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, th.Interval(), test.ShouldEqual, DefaultUpdateInterval)

	test.That(t, th.Allow(), test.ShouldBeTrue)
	mockClock.Add(DefaultUpdateInterval / 2)
	test.That(t, th.Allow(), test.ShouldBeFalse)
	mockClock.Add(DefaultUpdateInterval/2 + time.Millisecond)
	test.That(t, th.Allow(), test.ShouldBeTrue)
	test.That(t, th.Allow(), test.ShouldBeFalse)

	// independent of how many times it is asked in between
	for i := 0; i < 20; i++ {
		mockClock.Add(time.Millisecond)
		th.Allow()
	}
	mockClock.Add(DefaultUpdateInterval)
	test.That(t, th.Allow(), test.ShouldBeTrue)

	th.Reset()
	test.That(t, th.Allow(), test.ShouldBeTrue)
}

func TestThrottleIntervals(t *testing.T) {
	mockClock := clock.NewMock()
	_, err := NewThrottle(-time.Second, mockClock)
	test.That(t, errors.Is(err, ErrInvalidInterval), test.ShouldBeTrue)

	th, err := NewThrottle(0, mockClock)
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 5; i++ {
		test.That(t, th.Allow(), test.ShouldBeTrue)
	}

	test.That(t, th.SetInterval(time.Second), test.ShouldBeNil)
	test.That(t, th.Allow(), test.ShouldBeTrue)
	mockClock.Add(500 * time.Millisecond)
	test.That(t, th.Allow(), test.ShouldBeFalse)
	test.That(t, errors.Is(th.SetInterval(-1), ErrInvalidInterval), test.ShouldBeTrue)
	test.That(t, th.Interval(), test.ShouldEqual, time.Second)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	var obs Observer = r
	obs.OnTransition(Transition{ID: "a"})
	obs.OnTransition(Transition{ID: "b"})
	test.That(t, len(r.Transitions), test.ShouldEqual, 2)
	r.Reset()
	test.That(t, len(r.Transitions), test.ShouldEqual, 0)

	var got string
	ObserverFunc(func(tr Transition) { got = tr.ID }).OnTransition(Transition{ID: "c"})
	test.That(t, got, test.ShouldEqual, "c")
}
