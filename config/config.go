package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Data     DataConfig     `mapstructure:"data"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Game     GameConfig     `mapstructure:"game"`
	AI       AIConfig       `mapstructure:"ai"`
	Saving   SavingConfig   `mapstructure:"saving"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type DataConfig struct {
	Path string `mapstructure:"path"` // directory holding weapons.json, progression.json, scene.json
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type GameConfig struct {
	TickMs              int     `mapstructure:"tick_ms"`
	PercentageModifiers bool    `mapstructure:"percentage_modifiers"`
	RegenPercent        float64 `mapstructure:"regen_percent"`
	MaxSpeed            float64 `mapstructure:"max_speed"`
	MaxPathLength       float64 `mapstructure:"max_path_length"`
	HitDelay            float64 `mapstructure:"hit_delay"`
	EffectLifetime      float64 `mapstructure:"effect_lifetime"`
	DefaultWeapon       string  `mapstructure:"default_weapon"`
}

// TickInterval is tick_ms as a duration.
func (g GameConfig) TickInterval() time.Duration {
	return time.Duration(g.TickMs) * time.Millisecond
}

// AIConfig holds guard tuning; all values are in seconds or world units.
type AIConfig struct {
	ChaseDistance       float64 `mapstructure:"chase_distance"`
	SuspicionTime       float64 `mapstructure:"suspicion_time"`
	AggroCooldown       float64 `mapstructure:"aggro_cooldown"`
	WaypointTolerance   float64 `mapstructure:"waypoint_tolerance"`
	WaypointDwell       float64 `mapstructure:"waypoint_dwell"`
	PatrolSpeedFraction float64 `mapstructure:"patrol_speed_fraction"`
	ShoutDistance       float64 `mapstructure:"shout_distance"`
}

type SavingConfig struct {
	Store            string        `mapstructure:"store"` // db | cache
	DefaultSlot      string        `mapstructure:"default_slot"`
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"` // 0 disables autosave
}

type SecurityConfig struct {
	AdminKeyHash   string        `mapstructure:"admin_key_hash"` // bcrypt hash of the admin key
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	// AdminCIDRs restricts the control API. Empty allows every address.
	AdminCIDRs []string `mapstructure:"admin_cidrs"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("data.path", "./data")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/saves.db")
	v.SetDefault("database.mysql_max_open", 20)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("game.tick_ms", 50)
	v.SetDefault("game.percentage_modifiers", true)
	v.SetDefault("game.regen_percent", 70)
	v.SetDefault("game.max_speed", 5.66)
	v.SetDefault("game.max_path_length", 40)
	v.SetDefault("game.hit_delay", 0.3)
	v.SetDefault("game.effect_lifetime", 1)
	v.SetDefault("game.default_weapon", "unarmed")
	v.SetDefault("ai.chase_distance", 5)
	v.SetDefault("ai.suspicion_time", 3)
	v.SetDefault("ai.aggro_cooldown", 5)
	v.SetDefault("ai.waypoint_tolerance", 1)
	v.SetDefault("ai.waypoint_dwell", 1.5)
	v.SetDefault("ai.patrol_speed_fraction", 0.5)
	v.SetDefault("ai.shout_distance", 5)
	v.SetDefault("saving.store", "db")
	v.SetDefault("saving.default_slot", "save")
	v.SetDefault("saving.autosave_interval", "5m")
	v.SetDefault("security.jwt_ttl_h", "12h")
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)
}
