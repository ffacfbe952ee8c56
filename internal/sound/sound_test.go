package sound

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/rs/zerolog"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	e, err := c.ByID(ClassicTick)
	if err != nil {
		t.Fatal(err)
	}
	if e.Title != "Classic Tick" || e.Source != "tick.mp3" || e.Category != CategoryTick {
		t.Fatalf("unexpected entry %+v", e)
	}

	if _, err := c.ByID("0"); err == nil {
		t.Fatal("expected error for unknown id")
	}

	ticks := c.ByCategory(CategoryTick)
	if len(ticks) != 3 {
		t.Fatalf("expected 3 tick sounds, got %d", len(ticks))
	}
	if len(c.ByCategory(CategoryAlert)) != 1 {
		t.Fatal("expected one alert sound")
	}

	if c.Index(WaterDrop) != 2 || c.Index("nope") != -1 {
		t.Fatal("unexpected Index results")
	}
}

func TestNewDisabled(t *testing.T) {
	p := New(false, t.TempDir(), DefaultCatalog(), zerolog.Nop())
	if _, ok := p.(NopPlayer); !ok {
		t.Fatalf("expected NopPlayer, got %T", p)
	}
	p.Play(ClassicTick)
	p.StopAll()
}

func TestDecodeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bell.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	format := beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Silence(4410), format); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	buf, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if buf.Len() != 4410 {
		t.Fatalf("expected 4410 samples, got %d", buf.Len())
	}
}

func TestDecodeErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Decode(filepath.Join(dir, "missing.mp3")); err == nil {
		t.Fatal("expected error for missing file")
	}

	txt := filepath.Join(dir, "notes.txt")
	os.WriteFile(txt, []byte("hi"), 0o644)
	if _, err := Decode(txt); err == nil {
		t.Fatal("expected error for unsupported format")
	}

	bad := filepath.Join(dir, "bad.wav")
	os.WriteFile(bad, []byte("not a wav"), 0o644)
	if _, err := Decode(bad); err == nil {
		t.Fatal("expected error for corrupt wav")
	}
}
