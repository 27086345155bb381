package config

import (
	"os"
	"path"
	"time"

	"github.com/itchan-dev/nbbs/internal/domain"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	Http              Http               `yaml:"http"`
	Log               Log                `yaml:"log"`
	Storage           Storage            `yaml:"storage"`
	DefaultBoard      string             `yaml:"default_board"`
	BoardDefaults     domain.BoardConfig `yaml:"board_defaults"`
	IgnoreListRefresh time.Duration      `yaml:"ignore_list_refresh"`
	BcryptCost        int                `yaml:"bcrypt_cost"`
	RenderMarkdown    bool               `yaml:"render_markdown"`
}

type Http struct {
	Addr              string        `yaml:"addr"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	TrustProxy        bool          `yaml:"trust_proxy"`         // take the client host from X-Forwarded-For
	LegacyStatusCodes bool          `yaml:"legacy_status_codes"` // report errors with 200 like the original server
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	FloodRps          float64       `yaml:"flood_rps"` // 0 disables the per host flood limiter
	FloodBurst        float64       `yaml:"flood_burst"`
}

type Log struct {
	Level string `yaml:"level"`
	Json  bool   `yaml:"json"`
}

type Storage struct {
	Driver string `yaml:"driver"` // fs or pg
	Root   string `yaml:"root"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Private struct {
	TripSalt string `yaml:"trip_salt"`
	Pg       Pg     `yaml:"pg"`
}

func (s *Config) TripSalt() string {
	return s.private.TripSalt
}

func (s *Config) Pg() Pg {
	return s.private.Pg
}

// New builds a config in code; used by tests and tools.
func New(public Public, private Private) *Config {
	cfg := &Config{Public: public, private: private}
	cfg.setDefaults()
	return cfg
}

func (s *Config) setDefaults() {
	if s.Public.Http.Addr == "" {
		s.Public.Http.Addr = ":42012"
	}
	if s.Public.Storage.Driver == "" {
		s.Public.Storage.Driver = "fs"
	}
	if s.Public.DefaultBoard == "" {
		s.Public.DefaultBoard = "default"
	}
	if s.Public.IgnoreListRefresh <= 0 {
		s.Public.IgnoreListRefresh = time.Minute
	}
	if s.Public.Http.FloodBurst <= 0 {
		s.Public.Http.FloodBurst = 1
	}
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	if public.Storage.Driver != "" && public.Storage.Driver != "fs" && public.Storage.Driver != "pg" {
		panic("unknown storage driver: " + public.Storage.Driver)
	}

	return New(public, private)
}
