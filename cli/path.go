package cli

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/galaxyfield/aimcore/spatialmath"
)

// Frame is one line of a recorded camera path.
type Frame struct {
	// T is the time of the frame in seconds since the start of the path.
	T           float64                  `json:"t"`
	Position    r3.Vector                `json:"position"`
	Orientation *spatialmath.EulerAngles `json:"orientation,omitempty"`
	// Detached frames have no camera.
	Detached   bool   `json:"detached,omitempty"`
	Activate   bool   `json:"activate,omitempty"`
	Deactivate bool   `json:"deactivate,omitempty"`
	Mode       string `json:"mode,omitempty"`
}

// Offset returns T as a duration.
func (f Frame) Offset() time.Duration {
	return time.Duration(f.T * float64(time.Second))
}

// Pose returns the camera pose of the frame.
func (f Frame) Pose() spatialmath.Pose {
	if f.Orientation == nil {
		return spatialmath.NewPoseFromPoint(f.Position)
	}
	return spatialmath.NewPose(f.Position, f.Orientation)
}

// ReadPathFile reads a camera path from a JSON lines file.
func ReadPathFile(path string) ([]Frame, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open camera path")
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadPath(f)
}

// ReadPath reads one JSON frame per line. Blank lines and lines starting with # are skipped.
// Frame times must not decrease.
func ReadPath(r io.Reader) ([]Frame, error) {
	var frames []Frame
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var frame Frame
		if err := json.Unmarshal([]byte(text), &frame); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if frame.T < 0 {
			return nil, errors.Errorf("line %d: negative time %v", line, frame.T)
		}
		if len(frames) > 0 && frame.T < frames[len(frames)-1].T {
			return nil, errors.Errorf("line %d: time %v goes backwards", line, frame.T)
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, errors.New("camera path is empty")
	}
	return frames, nil
}
