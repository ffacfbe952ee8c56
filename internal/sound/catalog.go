// Package sound holds the sound catalog and the audio player used for
// tick and phase-end sounds.
package sound

import "fmt"

type Category string

const (
	CategoryTick    Category = "tick"
	CategoryAlert   Category = "alert"
	CategoryAmbient Category = "ambient"
)

// Entry describes one playable sound. Source is a file name relative to
// the sounds directory.
type Entry struct {
	ID       string
	Source   string
	Title    string
	Category Category
}

type Catalog []Entry

const (
	CorsicaDing = "4111001"
	ClassicTick = "4111002"
	WaterDrop   = "4111003"
	PhaseBell   = "4112001"
	SoftRain    = "4113001"
)

// DefaultCatalog returns the built-in sounds.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: CorsicaDing, Source: "corsica-ding.mp3", Title: "Corsica Ding", Category: CategoryTick},
		{ID: ClassicTick, Source: "tick.mp3", Title: "Classic Tick", Category: CategoryTick},
		{ID: WaterDrop, Source: "water-drop.mp3", Title: "Water Drop", Category: CategoryTick},
		{ID: PhaseBell, Source: "bell.wav", Title: "Phase Bell", Category: CategoryAlert},
		{ID: SoftRain, Source: "rain.ogg", Title: "Soft Rain", Category: CategoryAmbient},
	}
}

func (c Catalog) ByID(id string) (Entry, error) {
	for _, e := range c {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("unknown sound %q", id)
}

func (c Catalog) ByCategory(cat Category) []Entry {
	var out []Entry
	for _, e := range c {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

// Index returns the position of id in the catalog, or -1.
func (c Catalog) Index(id string) int {
	for i, e := range c {
		if e.ID == id {
			return i
		}
	}
	return -1
}
