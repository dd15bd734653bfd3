// Package cli contains the aimprobe command line tool: it replays recorded camera paths against a
// scene and reports the resulting interaction transitions.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	generalFlagDebug = "debug"
	flagConfig       = "config"
	flagScene        = "scene"
	flagPath         = "path"
	flagJSON         = "json"
	flagFPS          = "fps"
	flagLoop         = "loop"
	flagMetricsAddr  = "metrics-addr"
	flagCategory     = "category"

	defaultFPS = 60
)

func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load engine configuration from `FILE` (.json, .yaml)",
		},
		&cli.StringFlag{
			Name:     flagScene,
			Required: true,
			Usage:    "scene graph `FILE` (*.data.json)",
		},
		&cli.StringFlag{
			Name:     flagPath,
			Required: true,
			Usage:    "camera path `FILE`, one JSON frame per line",
		},
		&cli.BoolFlag{
			Name:  flagJSON,
			Usage: "print transitions as JSON lines",
		},
	}
}

// NewApp returns the aimprobe app. Results go to out, logs to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "aimprobe",
		Usage:           "drive the interaction engine with recorded camera paths",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "boxes",
				Usage: "print the collision boxes a scene registers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "load engine configuration from `FILE` (.json, .yaml)",
					},
					&cli.StringFlag{
						Name:     flagScene,
						Required: true,
						Usage:    "scene graph `FILE` (*.data.json)",
					},
					&cli.StringFlag{
						Name:  flagCategory,
						Usage: "only print `CATEGORY` (clusters, nodes, interactiveElements)",
					},
				},
				Action: BoxesAction,
			},
			{
				Name:   "replay",
				Usage:  "replay a camera path as fast as possible on a simulated clock",
				Flags:  sessionFlags(),
				Action: ReplayAction,
			},
			{
				Name:  "live",
				Usage: "play a camera path in real time, reloading the scene when it changes",
				Flags: append(sessionFlags(),
					&cli.IntFlag{
						Name:  flagFPS,
						Value: defaultFPS,
						Usage: "frames per second",
					},
					&cli.BoolFlag{
						Name:  flagLoop,
						Usage: "restart the path when it ends",
					},
					&cli.StringFlag{
						Name:  flagMetricsAddr,
						Usage: "serve prometheus metrics on `ADDR` (e.g. :9090)",
					},
				),
				Action: LiveAction,
			},
		},
	}
}
