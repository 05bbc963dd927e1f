// Package audio plays the audio sources placed in a scene.
//
// Each source entity gets a voice on the shared speaker mixer. Voices loop
// when asked to and fade with distance from the camera.
package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/stagecraft/internal/engine/entity"
	"github.com/Faultbox/stagecraft/internal/logger"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// voice is one playing source.
type voice struct {
	path     string
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	gain     float64
	failed   bool // Open or decode failed; not retried until the path changes
}

// Manager mixes the scene's audio sources.
type Manager struct {
	mu sync.Mutex

	// State
	initialized bool
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer

	// Settings
	masterVolume float64
	muted        bool
	falloff      float32 // Distance at which a source becomes silent

	voices map[entity.ID]*voice
}

// New creates a new audio manager.
func New(masterVolume float64, falloff float32) *Manager {
	if falloff <= 0 {
		falloff = 50
	}
	return &Manager{
		masterVolume: clamp(masterVolume, 0, 1),
		falloff:      falloff,
		mixer:        &beep.Mixer{},
		voices:       make(map[entity.ID]*voice),
	}
}

// Init opens the audio device.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	m.sampleRate = DefaultSampleRate
	err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30))
	if err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.mixer)

	m.initialized = true
	return nil
}

// Close stops every voice and shuts down the audio system.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.voices {
		m.stopVoice(id)
	}
	if m.initialized {
		speaker.Clear()
		speaker.Close()
	}
	m.initialized = false
}

// IsInitialized returns whether the audio system is initialized.
func (m *Manager) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
}

// GetMasterVolume returns the master volume.
func (m *Manager) GetMasterVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.masterVolume
}

// SetMuted silences every source without stopping playback.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// Gain returns the last computed linear gain of a source.
func (m *Manager) Gain(id entity.ID) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voices[id]
	if !ok {
		return 0, false
	}
	return v.gain, true
}

// Attenuation is the linear distance falloff: 1 at the listener, 0 at
// falloff and beyond.
func Attenuation(distance, falloff float32) float64 {
	if falloff <= 0 {
		return 1
	}
	return clamp(1-float64(distance/falloff), 0, 1)
}

// Sync starts voices for new sources, stops voices of removed ones and
// updates every gain for the listener position. It runs once per frame on
// the render thread.
func (m *Manager) Sync(sources []*entity.Entity, listener mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[entity.ID]bool, len(sources))
	for _, e := range sources {
		if e.Sound == nil || e.Sound.Path == "" {
			continue
		}
		id := e.ID()
		seen[id] = true

		v, ok := m.voices[id]
		if ok && v.path != e.Sound.Path {
			m.stopVoice(id)
			ok = false
		}
		if !ok {
			v = &voice{path: e.Sound.Path}
			m.voices[id] = v
			if m.initialized {
				if err := m.startVoice(v, e.Sound.Looped); err != nil {
					v.failed = true
					logger.Warn("audio source failed",
						zap.String("entity", e.Name),
						zap.String("path", e.Sound.Path),
						zap.Error(err),
					)
				}
			}
		}

		gain := m.masterVolume * float64(e.Sound.Volume) *
			Attenuation(e.Transform.Position.Sub(listener).Len(), m.falloff)
		if m.muted || !e.Render {
			gain = 0
		}
		v.gain = gain
		m.applyGain(v)
	}

	for id := range m.voices {
		if !seen[id] {
			m.stopVoice(id)
		}
	}
}

func (m *Manager) startVoice(v *voice, looped bool) error {
	if ext := strings.ToLower(filepath.Ext(v.path)); ext != ".wav" {
		return fmt.Errorf("unsupported audio format %s", ext)
	}
	f, err := os.Open(v.path)
	if err != nil {
		return err
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode wav: %w", err)
	}

	// Resample if needed
	var resampled beep.Streamer = streamer
	if format.SampleRate != m.sampleRate {
		resampled = beep.Resample(4, format.SampleRate, m.sampleRate, streamer)
	}

	var s beep.Streamer = resampled
	if looped {
		s = &loopStreamer{streamer: streamer, resampled: resampled}
	}

	v.streamer = streamer
	v.ctrl = &beep.Ctrl{Streamer: s}
	v.volume = &effects.Volume{Streamer: v.ctrl, Base: 2, Silent: true}
	m.mixer.Add(v.volume)
	return nil
}

func (m *Manager) applyGain(v *voice) {
	if v.volume == nil {
		return
	}
	speaker.Lock()
	v.volume.Silent = v.gain <= 0
	v.volume.Volume = volumeToDb(v.gain)
	speaker.Unlock()
}

func (m *Manager) stopVoice(id entity.ID) {
	v, ok := m.voices[id]
	if !ok {
		return
	}
	delete(m.voices, id)
	if v.ctrl != nil {
		speaker.Lock()
		v.ctrl.Paused = true
		v.ctrl.Streamer = nil
		speaker.Unlock()
	}
	if v.streamer != nil {
		v.streamer.Close()
	}
}

// volumeToDb converts a 0-1 gain to the base-2 exponent effects.Volume uses.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100 // Effectively silent
	}
	// vol=1 -> 0, vol=0.5 -> -1, vol=0.25 -> -2
	return math.Log2(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// loopStreamer wraps a streamer to make it loop.
type loopStreamer struct {
	streamer  beep.StreamSeekCloser
	resampled beep.Streamer
}

func (l *loopStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := l.resampled.Stream(samples[filled:])
		filled += n
		if !ok {
			// Reset to beginning
			if err := l.streamer.Seek(0); err != nil {
				return filled, false
			}
			if n == 0 && l.streamer.Len() == 0 {
				return filled, false
			}
			continue
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.streamer.Err()
}
