package resource

import "github.com/kasuganosora/rpgcore/server/game/core"

// Hand names accepted in weapon definitions.
const (
	HandRight = "right"
	HandLeft  = "left"
)

// Weapon is an immutable weapon definition from weapons.json.
type Weapon struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Range             float64     `json:"range"`
	Damage            float64     `json:"damage"`
	PercentageBonus   float64     `json:"percentage_bonus"`
	AttackCadence     float64     `json:"attack_cadence"` // seconds between swings
	Hand              string      `json:"hand"`
	Prefab            string      `json:"prefab"`
	AnimationOverride string      `json:"animation_override"`
	Projectile        *Projectile `json:"projectile,omitempty"`
}

// IsRanged reports whether hits are delivered by a projectile.
func (w *Weapon) IsRanged() bool { return w.Projectile != nil }

// Projectile describes what a ranged weapon launches.
type Projectile struct {
	Speed               float64 `json:"speed"`
	Homing              bool    `json:"homing"`
	MaxLifetime         float64 `json:"max_lifetime"`
	LifetimeAfterImpact float64 `json:"lifetime_after_impact"`
	HitEffect           string  `json:"hit_effect"`
}

// ProgressionData is progression.json: per class, per stat, one value per
// level starting at level 1.
type ProgressionData struct {
	Classes []*ProgressionClass `json:"classes"`
}

// ProgressionClass holds the stat tables of one character class.
type ProgressionClass struct {
	Class string               `json:"class"`
	Stats map[string][]float64 `json:"stats"`
}

// Scene is scene.json: the walkable grid and everything placed on it.
type Scene struct {
	Grid        Grid                   `json:"grid"`
	PatrolPaths map[string][]core.Vec3 `json:"patrol_paths"`
	Actors      []*ActorSpawn          `json:"actors"`
	Pickups     []*PickupSpawn         `json:"pickups"`
}

// Grid is the navigation grid. Cells are one world unit wide and addressed
// by integer X/Z.
type Grid struct {
	Width   int      `json:"width"`
	Depth   int      `json:"depth"`
	Blocked [][2]int `json:"blocked"`
}

// Capsule is an actor's collider.
type Capsule struct {
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

// ActorSpawn places one actor in the scene.
type ActorSpawn struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Tag        string    `json:"tag"`
	Class      string    `json:"class"`
	Level      int       `json:"level"`
	Position   core.Vec3 `json:"position"`
	Yaw        float64   `json:"yaw"`
	Weapon     string    `json:"weapon"`
	PatrolPath string    `json:"patrol_path"`
	AI         bool      `json:"ai"`
	Experience bool      `json:"experience"`
	Capsule    *Capsule  `json:"capsule,omitempty"`
}

// PickupSpawn places a weapon pickup.
type PickupSpawn struct {
	Weapon   string    `json:"weapon"`
	Position core.Vec3 `json:"position"`
	Radius   float64   `json:"radius"`
	Respawn  float64   `json:"respawn"` // seconds hidden after being taken
}
