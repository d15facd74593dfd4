package stats

import (
	"errors"
	"fmt"

	"github.com/kasuganosora/rpgcore/server/resource"
)

// ErrInvalidProgression is returned for progression data the pipeline cannot use.
var ErrInvalidProgression = errors.New("stats: invalid progression")

// Progression is the per-class, per-stat, per-level lookup table.
type Progression struct {
	table map[CharacterClass]map[Stat][]float64
}

// NewProgression builds the lookup table from loaded data.
func NewProgression(data *resource.ProgressionData) (*Progression, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: no data", ErrInvalidProgression)
	}
	p := &Progression{table: make(map[CharacterClass]map[Stat][]float64, len(data.Classes))}
	for _, c := range data.Classes {
		class := CharacterClass(c.Class)
		if _, dup := p.table[class]; dup {
			return nil, fmt.Errorf("%w: duplicate class %q", ErrInvalidProgression, c.Class)
		}
		row := make(map[Stat][]float64, len(c.Stats))
		for name, levels := range c.Stats {
			stat := Stat(name)
			if !stat.Known() {
				return nil, fmt.Errorf("%w: class %q has unknown stat %q", ErrInvalidProgression, c.Class, name)
			}
			if len(levels) == 0 {
				return nil, fmt.Errorf("%w: class %q stat %q has no levels", ErrInvalidProgression, c.Class, name)
			}
			row[stat] = append([]float64(nil), levels...)
		}
		p.table[class] = row
	}
	return p, nil
}

// Stat returns the table value for level (1-based). Levels beyond the table
// and unknown classes or stats yield 0.
func (p *Progression) Stat(stat Stat, class CharacterClass, level int) float64 {
	levels := p.table[class][stat]
	if level < 1 || level > len(levels) {
		return 0
	}
	return levels[level-1]
}

// Levels returns how many levels the table defines for stat.
func (p *Progression) Levels(stat Stat, class CharacterClass) int {
	return len(p.table[class][stat])
}

// HasClass reports whether the class has any table.
func (p *Progression) HasClass(class CharacterClass) bool {
	_, ok := p.table[class]
	return ok
}
