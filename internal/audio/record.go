package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// Recorder captures mono audio from an input device into temporary
// WAV files. Each Record call initializes and terminates PortAudio so
// the recorder holds no audio resources between captures.
type Recorder struct {
	// DeviceName selects the input device by name fragment; empty
	// means the system default.
	DeviceName string
	// Dir receives the recorded files; empty means os.TempDir().
	Dir string

	log *zap.Logger
}

// NewRecorder returns a recorder writing to dir (or the system temp
// directory) from the named input device (or the default).
func NewRecorder(deviceName, dir string, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{DeviceName: deviceName, Dir: dir, log: log}
}

// Record captures duration seconds of mono audio at DefaultSampleRate
// and returns the path of the written WAV file.
func (r *Recorder) Record(duration float64) (string, error) {
	samples, err := r.capture(duration)
	if err != nil {
		return "", err
	}

	dir := r.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("recording_%s.wav", uuid.NewString()))
	if err := SaveWAV(path, samples, DefaultSampleRate); err != nil {
		return "", err
	}
	r.log.Info("recorded audio",
		zap.String("path", path), zap.Float64("duration_s", duration))
	return path, nil
}

func (r *Recorder) capture(duration float64) ([]float32, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio init: %w", err)
	}
	defer portaudio.Terminate()

	stream, buf, err := r.openStream()
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("audio start: %w", err)
	}
	defer stream.Stop()

	frames := int(duration * DefaultSampleRate)
	samples := make([]float32, 0, frames+len(buf))
	deadline := time.Now().Add(time.Duration(duration*float64(time.Second)) + 2*time.Second)
	for len(samples) < frames {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("audio capture stalled at %d/%d frames", len(samples), frames)
		}
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("audio read: %w", err)
		}
		samples = append(samples, buf...)
	}
	return samples[:frames], nil
}

func (r *Recorder) openStream() (*portaudio.Stream, []float32, error) {
	buf := make([]float32, 1024)
	if r.DeviceName == "" {
		stream, err := portaudio.OpenDefaultStream(1, 0, DefaultSampleRate, len(buf), buf)
		if err != nil {
			return nil, nil, fmt.Errorf("audio device unavailable: %w", err)
		}
		return stream, buf, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, nil, fmt.Errorf("audio device list: %w", err)
	}
	fragment := strings.ToLower(r.DeviceName)
	for _, dev := range devices {
		if dev.MaxInputChannels < 1 || !strings.Contains(strings.ToLower(dev.Name), fragment) {
			continue
		}
		params := portaudio.HighLatencyParameters(dev, nil)
		params.Input.Channels = 1
		params.SampleRate = DefaultSampleRate
		params.FramesPerBuffer = len(buf)
		stream, err := portaudio.OpenStream(params, buf)
		if err != nil {
			return nil, nil, fmt.Errorf("audio device %q: %w", dev.Name, err)
		}
		return stream, buf, nil
	}
	return nil, nil, fmt.Errorf("audio device unavailable: no input matches %q", r.DeviceName)
}
