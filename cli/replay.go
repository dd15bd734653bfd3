package cli

import (
	"github.com/benbjohnson/clock"
	"github.com/urfave/cli/v2"
)

// ReplayAction runs every frame of the camera path once, in order, on a simulated clock set to
// each frame's time, and prints the transitions and the final state.
func ReplayAction(c *cli.Context) error {
	mock := clock.NewMock()
	s, err := newProbeSession(c, mock)
	if err != nil {
		return err
	}
	asJSON := c.Bool(flagJSON)
	start := mock.Now()
	s.engine.AddObserver(printer(c.App.Writer, start, asJSON, s.logger))

	for _, f := range s.frames {
		mock.Set(start.Add(f.Offset()))
		s.step(f)
	}
	return printState(c.App.Writer, s.engine.State(), asJSON)
}
