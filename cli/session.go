package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/urfave/cli/v2"

	"github.com/galaxyfield/aimcore/config"
	"github.com/galaxyfield/aimcore/engine"
	"github.com/galaxyfield/aimcore/interaction"
	"github.com/galaxyfield/aimcore/logging"
	"github.com/galaxyfield/aimcore/scene"
	"github.com/galaxyfield/aimcore/spatialmath"
)

// pathCamera is the pose provider fed from path frames. It is only touched from the goroutine
// driving the engine.
type pathCamera struct {
	pose spatialmath.Pose
}

func (c *pathCamera) CameraPose() (spatialmath.Pose, bool) {
	return c.pose, c.pose != nil
}

// probeSession is an engine loaded with a scene and a camera path.
type probeSession struct {
	conf   config.Config
	logger logging.Logger
	engine *engine.Engine
	camera *pathCamera
	frames []Frame
}

// loadConfig returns the configuration named by the config flag, or the defaults.
func loadConfig(c *cli.Context) (config.Config, error) {
	if path := c.String(flagConfig); path != "" {
		read, err := config.Read(path)
		if err != nil {
			return config.Config{}, err
		}
		return *read, nil
	}
	return config.Default(), nil
}

// newLogger logs to the app's error writer at the configured level, or debug with --debug.
func newLogger(c *cli.Context, conf config.Config) logging.Logger {
	logger := logging.NewBlankLogger("aimprobe")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	logger.SetLevel(conf.Level())
	if c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.DEBUG)
	}
	return logger
}

func loadScene(c *cli.Context, conf config.Config) (*scene.Graph, *scene.Scene, error) {
	graph, err := scene.Load(c.String(flagScene))
	if err != nil {
		return nil, nil, err
	}
	sc, err := scene.New(graph, scene.SizesFromConfig(&conf))
	if err != nil {
		return nil, nil, err
	}
	return graph, sc, nil
}

func newProbeSession(c *cli.Context, clk clock.Clock) (*probeSession, error) {
	conf, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	logger := newLogger(c, conf)
	graph, sc, err := loadScene(c, conf)
	if err != nil {
		return nil, err
	}
	frames, err := ReadPathFile(c.String(flagPath))
	if err != nil {
		return nil, err
	}

	camera := &pathCamera{}
	eng, err := engine.New(engine.Options{
		Config:   conf,
		Clock:    clk,
		Camera:   camera,
		Contents: sc,
		Logger:   logger.Sublogger("engine"),
	})
	if err != nil {
		return nil, err
	}
	if err := sc.Register(eng.Registry()); err != nil {
		return nil, err
	}
	logger.Infow("session ready", "session", eng.Session().String(),
		"clusters", len(graph.Clusters), "frames", len(frames))

	return &probeSession{conf: conf, logger: logger, engine: eng, camera: camera, frames: frames}, nil
}

// step places the camera and applies mode changes of frames, runs one engine update, then fires
// the frames' activation edges against the updated state.
func (s *probeSession) step(frames ...Frame) {
	for _, f := range frames {
		if f.Mode != "" {
			if err := s.engine.SetMode(engine.Mode(f.Mode)); err != nil {
				s.logger.Warnw("skipping mode change", "t", f.T, "error", err)
			}
		}
		if f.Detached {
			s.camera.pose = nil
		} else {
			s.camera.pose = f.Pose()
		}
	}
	s.engine.Update()
	for _, f := range frames {
		if f.Deactivate {
			s.engine.Deactivate()
		}
		if f.Activate {
			s.engine.Activate()
		}
	}
}

// reload swaps in a new scene graph.
func (s *probeSession) reload(g *scene.Graph) {
	sc, err := scene.New(g, scene.SizesFromConfig(&s.conf))
	if err != nil {
		s.logger.Warnw("ignoring scene", "error", err)
		return
	}
	if err := sc.Register(s.engine.Registry()); err != nil {
		s.logger.Warnw("cannot register scene", "error", err)
		return
	}
	s.engine.SetContents(sc)
}

type transitionRecord struct {
	T          float64 `json:"t"`
	Category   string  `json:"category"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	PreviousID string  `json:"previous_id,omitempty"`
	ID         string  `json:"id,omitempty"`
	Event      string  `json:"event"`
}

// printer writes each transition to w, timed relative to start. Write errors are logged and do
// not stop the session.
func printer(w io.Writer, start time.Time, asJSON bool, logger logging.Logger) interaction.Observer {
	enc := json.NewEncoder(w)
	return interaction.ObserverFunc(func(t interaction.Transition) {
		offset := t.At.Sub(start).Seconds()
		var err error
		if asJSON {
			err = enc.Encode(transitionRecord{
				T:          offset,
				Category:   t.Category.String(),
				From:       t.From.String(),
				To:         t.To.String(),
				PreviousID: t.PreviousID,
				ID:         t.ID,
				Event:      t.Event.String(),
			})
		} else {
			_, err = fmt.Fprintf(w, "%9.3fs  %s\n", offset, t)
		}
		if err != nil {
			logger.Warnw("cannot write transition", "transition", t.String(), "error", err)
		}
	})
}

func printState(w io.Writer, state interaction.State, asJSON bool) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if asJSON {
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
	_, err = fmt.Fprintf(w, "final state: %s\n", data)
	return err
}
