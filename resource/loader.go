package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalidData wraps every validation failure found while loading.
var ErrInvalidData = errors.New("resource: invalid data")

// ResourceLoader holds all game data loaded from the data directory.
type ResourceLoader struct {
	DataPath string

	Weapons     []*Weapon
	Progression *ProgressionData
	Scene       *Scene
	Passability *PassabilityMap

	weaponByID map[string]*Weapon
}

// NewLoader creates a ResourceLoader for the given data directory.
func NewLoader(dataPath string) *ResourceLoader {
	return &ResourceLoader{
		DataPath:   dataPath,
		weaponByID: make(map[string]*Weapon),
	}
}

// Load reads every data file, validates it and pre-computes derived data.
// Any malformed entry aborts the load.
func (rl *ResourceLoader) Load() error {
	loaders := []func() error{
		rl.loadWeapons,
		rl.loadProgression,
		rl.loadScene,
		rl.validateScene,
	}
	for _, fn := range loaders {
		if err := fn(); err != nil {
			return err
		}
	}
	rl.buildPassability()
	return nil
}

// NewFromData builds a loader from already decoded data and applies the
// same validation as Load.
func NewFromData(weapons []*Weapon, progression *ProgressionData, scene *Scene) (*ResourceLoader, error) {
	if progression == nil || scene == nil {
		return nil, invalid("progression and scene are required")
	}
	rl := NewLoader("")
	rl.Progression = progression
	rl.Scene = scene
	if err := rl.addWeapons(weapons); err != nil {
		return nil, err
	}
	if err := ValidateProgression(progression); err != nil {
		return nil, err
	}
	if err := rl.validateScene(); err != nil {
		return nil, err
	}
	rl.buildPassability()
	return rl, nil
}

// WeaponByID returns the weapon definition or nil.
func (rl *ResourceLoader) WeaponByID(id string) *Weapon {
	return rl.weaponByID[id]
}

func (rl *ResourceLoader) path(file string) string {
	return filepath.Join(rl.DataPath, file)
}

func loadJSONArray[T any](path string) ([]*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resource: read %s: %w", path, err)
	}
	var arr []*T
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, fmt.Errorf("resource: parse %s: %w", path, err)
	}
	return arr, nil
}

func loadJSONObject[T any](path string, out *T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("resource: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("resource: parse %s: %w", path, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidData, fmt.Sprintf(format, args...))
}

func (rl *ResourceLoader) loadWeapons() error {
	weapons, err := loadJSONArray[Weapon](rl.path("weapons.json"))
	if err != nil {
		return err
	}
	return rl.addWeapons(weapons)
}

func (rl *ResourceLoader) addWeapons(weapons []*Weapon) error {
	for i, w := range weapons {
		if w == nil {
			continue
		}
		if err := ValidateWeapon(w); err != nil {
			return fmt.Errorf("weapons.json[%d]: %w", i, err)
		}
		if _, dup := rl.weaponByID[w.ID]; dup {
			return invalid("weapons.json[%d]: duplicate weapon id %q", i, w.ID)
		}
		rl.weaponByID[w.ID] = w
		rl.Weapons = append(rl.Weapons, w)
	}
	return nil
}

// ValidateWeapon checks a single weapon definition.
func ValidateWeapon(w *Weapon) error {
	switch {
	case w.ID == "":
		return invalid("weapon without id")
	case w.Range <= 0:
		return invalid("weapon %q: range must be positive", w.ID)
	case w.Damage < 0:
		return invalid("weapon %q: damage must not be negative", w.ID)
	case w.AttackCadence <= 0:
		return invalid("weapon %q: attack_cadence must be positive", w.ID)
	case w.Hand != HandRight && w.Hand != HandLeft:
		return invalid("weapon %q: unknown hand %q", w.ID, w.Hand)
	}
	if p := w.Projectile; p != nil {
		if p.Speed <= 0 {
			return invalid("weapon %q: projectile speed must be positive", w.ID)
		}
		if p.MaxLifetime <= 0 || p.LifetimeAfterImpact < 0 {
			return invalid("weapon %q: bad projectile lifetimes", w.ID)
		}
	}
	return nil
}

func (rl *ResourceLoader) loadProgression() error {
	rl.Progression = &ProgressionData{}
	if err := loadJSONObject(rl.path("progression.json"), rl.Progression); err != nil {
		return err
	}
	return ValidateProgression(rl.Progression)
}

// ValidateProgression checks table shapes. Stat names are checked by the
// stats package when the progression is built.
func ValidateProgression(p *ProgressionData) error {
	seen := make(map[string]bool)
	for i, c := range p.Classes {
		if c == nil || c.Class == "" {
			return invalid("progression.json classes[%d]: missing class name", i)
		}
		if seen[c.Class] {
			return invalid("progression.json: duplicate class %q", c.Class)
		}
		seen[c.Class] = true
		for stat, levels := range c.Stats {
			if len(levels) == 0 {
				return invalid("progression.json: class %q stat %q has no levels", c.Class, stat)
			}
		}
		xp, hasXP := c.Stats["experience_to_level_up"]
		if health, ok := c.Stats["health"]; hasXP && ok && len(health) < len(xp)+1 {
			return invalid("progression.json: class %q health table covers %d levels, need %d",
				c.Class, len(health), len(xp)+1)
		}
	}
	return nil
}

func (rl *ResourceLoader) hasClass(name string) bool {
	for _, c := range rl.Progression.Classes {
		if c.Class == name {
			return true
		}
	}
	return false
}

func (rl *ResourceLoader) loadScene() error {
	rl.Scene = &Scene{}
	return loadJSONObject(rl.path("scene.json"), rl.Scene)
}

func (rl *ResourceLoader) validateScene() error {
	s := rl.Scene
	if s.Grid.Width <= 0 || s.Grid.Depth <= 0 {
		return invalid("scene.json: grid must have positive size")
	}
	for name, path := range s.PatrolPaths {
		if len(path) == 0 {
			return invalid("scene.json: patrol path %q is empty", name)
		}
	}
	ids := make(map[string]bool)
	for i, a := range s.Actors {
		if a == nil {
			return invalid("scene.json actors[%d]: null entry", i)
		}
		if a.ID != "" {
			if ids[a.ID] {
				return invalid("scene.json: duplicate actor id %q", a.ID)
			}
			ids[a.ID] = true
		}
		if !rl.hasClass(a.Class) {
			return invalid("scene.json actors[%d]: unknown class %q", i, a.Class)
		}
		if a.Level < 0 {
			return invalid("scene.json actors[%d]: negative level", i)
		}
		if a.Weapon != "" && rl.WeaponByID(a.Weapon) == nil {
			return invalid("scene.json actors[%d]: unknown weapon %q", i, a.Weapon)
		}
		if a.PatrolPath != "" {
			if _, ok := s.PatrolPaths[a.PatrolPath]; !ok {
				return invalid("scene.json actors[%d]: unknown patrol path %q", i, a.PatrolPath)
			}
		}
	}
	for i, p := range s.Pickups {
		if p == nil || rl.WeaponByID(p.Weapon) == nil {
			return invalid("scene.json pickups[%d]: unknown weapon", i)
		}
	}
	return nil
}

func (rl *ResourceLoader) buildPassability() {
	g := rl.Scene.Grid
	pm := NewPassabilityMap(g.Width, g.Depth)
	for _, cell := range g.Blocked {
		pm.SetBlocked(cell[0], cell[1], true)
	}
	rl.Passability = pm
}
