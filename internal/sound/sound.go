//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"github.com/ivanwe2/battleships/internal/logger"
)

const sampleRate = beep.SampleRate(44100)

// Manager decodes the cue files once and plays them on the speaker.
type Manager struct {
	dir     string
	buffers map[Cue]*beep.Buffer
	enabled bool
}

// NewManager creates a silent manager reading cues from dir. Init turns
// the speaker on.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:     dir,
		buffers: make(map[Cue]*beep.Buffer),
	}
}

// Init opens the speaker and loads every known cue found in the directory.
// A missing directory just means no sounds.
func (m *Manager) Init() error {
	// small buffer for low latency
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	m.enabled = true

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	known := make(map[Cue]bool, len(Cues))
	for _, c := range Cues {
		known[c] = true
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		cue := Cue(strings.TrimSuffix(name, filepath.Ext(name)))
		if !known[cue] || (ext != ".mp3" && ext != ".wav") {
			continue
		}
		buf, err := decode(filepath.Join(m.dir, name), ext)
		if err != nil {
			logger.LogWarn("skipping sound %s: %v", name, err)
			continue
		}
		m.buffers[cue] = buf
	}
	return nil
}

func decode(path, ext string) (*beep.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = streamer.Close() }()

	var s beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		s = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 4})
	buf.Append(s)
	return buf, nil
}

// Play starts c without waiting for it to finish. Unknown cues are silent.
func (m *Manager) Play(c Cue) {
	if !m.enabled {
		return
	}
	buf, ok := m.buffers[c]
	if !ok {
		return
	}
	speaker.Play(buf.Streamer(0, buf.Len()))
}

// Close stops playback.
func (m *Manager) Close() {
	if !m.enabled {
		return
	}
	m.enabled = false
	speaker.Clear()
}
