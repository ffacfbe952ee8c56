package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
	"github.com/rs/zerolog"
)

const sampleRate = beep.SampleRate(44100)

// Player plays catalog sounds by id.
type Player interface {
	Play(id string)
	StopAll()
}

// NopPlayer discards everything. It is used when audio is disabled or the
// speaker cannot be opened.
type NopPlayer struct{}

func (NopPlayer) Play(string) {}
func (NopPlayer) StopAll()    {}

// BeepPlayer decodes sound files from a directory and plays them through
// the system speaker. Decoded buffers are cached per id.
type BeepPlayer struct {
	dir     string
	catalog Catalog
	logger  zerolog.Logger

	mu      sync.Mutex
	buffers map[string]*beep.Buffer
	missing map[string]bool
}

// NewBeepPlayer initializes the speaker. Callers fall back to NopPlayer on
// error.
func NewBeepPlayer(dir string, catalog Catalog, logger zerolog.Logger) (*BeepPlayer, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &BeepPlayer{
		dir:     dir,
		catalog: catalog,
		logger:  logger,
		buffers: make(map[string]*beep.Buffer),
		missing: make(map[string]bool),
	}, nil
}

// New returns a BeepPlayer, or a NopPlayer when audio is disabled or
// unavailable.
func New(enabled bool, dir string, catalog Catalog, logger zerolog.Logger) Player {
	if !enabled {
		return NopPlayer{}
	}
	p, err := NewBeepPlayer(dir, catalog, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("audio disabled")
		return NopPlayer{}
	}
	return p
}

func (p *BeepPlayer) Play(id string) {
	buf := p.buffer(id)
	if buf == nil {
		return
	}
	speaker.Play(buf.Streamer(0, buf.Len()))
}

func (p *BeepPlayer) StopAll() {
	speaker.Clear()
}

func (p *BeepPlayer) buffer(id string) *beep.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if buf, ok := p.buffers[id]; ok {
		return buf
	}
	if p.missing[id] {
		return nil
	}

	entry, err := p.catalog.ByID(id)
	if err == nil {
		var buf *beep.Buffer
		buf, err = Decode(filepath.Join(p.dir, entry.Source))
		if err == nil {
			p.buffers[id] = buf
			return buf
		}
	}
	p.missing[id] = true
	p.logger.Warn().Err(err).Str("sound", id).Msg("sound unavailable")
	return nil
}

// Decode reads an mp3, ogg or wav file into a buffer at the speaker's
// sample rate.
func Decode(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported sound format %q", ext)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	defer streamer.Close()

	out := beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}
	buf := beep.NewBuffer(out)
	if format.SampleRate == sampleRate {
		buf.Append(streamer)
	} else {
		buf.Append(beep.Resample(4, format.SampleRate, sampleRate, streamer))
	}
	return buf, nil
}
