package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "NICHECAL_"

// MigratedTable is the calendar table created by the bundled migrations.
const MigratedTable = "dastas_2025"

type Application struct {
	Addr     string   `koanf:"addr" validate:"required"`
	Backend  string   `koanf:"backend" validate:"oneof=postgres rest"`
	Database Database `koanf:"db"`
	Rest     Rest     `koanf:"rest"`
	Calendar Calendar `koanf:"calendar"`
	Cache    Cache    `koanf:"cache"`
	Render   Render   `koanf:"render"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port" validate:"min=1,max=65535"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Rest configures the hosted PostgREST-compatible backend.
type Rest struct {
	Url     string        `koanf:"url" validate:"omitempty,url"`
	ApiKey  string        `koanf:"apikey"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

type Calendar struct {
	// Table can only differ from MigratedTable with the rest backend.
	Table string `koanf:"table" validate:"required"`
	// Match is either "overlap" (any requested niche) or "contains" (all requested niches).
	Match string `koanf:"match" validate:"oneof=overlap contains"`
}

type Cache struct {
	Ttl   time.Duration `koanf:"ttl" validate:"gt=0"`
	Purge string        `koanf:"purge" validate:"required"`
	Redis Redis         `koanf:"redis"`
}

type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	Db       int    `koanf:"db"`
}

type Render struct {
	LoadingWait  time.Duration `koanf:"loadingwait" validate:"gt=0"`
	FetchTimeout time.Duration `koanf:"fetchtimeout" validate:"gt=0"`
	Locale       string        `koanf:"locale" validate:"required"`
}

func Defaults() Application {
	return Application{
		Addr:    ":8181",
		Backend: "postgres",
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "nichecal",
			Pass:   "",
			Name:   "nichecal",
			Schema: "nichecal",
		},
		Rest: Rest{
			Timeout: 10 * time.Second,
		},
		Calendar: Calendar{
			Table: MigratedTable,
			Match: "overlap",
		},
		Cache: Cache{
			Ttl:   5 * time.Minute,
			Purge: "@every 1m",
		},
		Render: Render{
			LoadingWait:  1500 * time.Millisecond,
			FetchTimeout: 10 * time.Second,
			Locale:       "pt-BR",
		},
	}
}

// Load layers struct defaults, the YAML file at path, a .env file in the
// working directory and NICHECAL_* environment variables, then validates.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("no .env file found")
		} else {
			return Application{}, fmt.Errorf("error loading .env: %w", err)
		}
	}

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	if err := Validate(&app); err != nil {
		return Application{}, err
	}
	return app, nil
}

var validate = validator.New()

func Validate(app *Application) error {
	if err := validate.Struct(app); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if app.Backend == "rest" && app.Rest.Url == "" {
		return errors.New("invalid configuration: rest.url is required for the rest backend")
	}
	if app.Backend == "postgres" && app.Calendar.Table != MigratedTable {
		return fmt.Errorf("invalid configuration: calendar.table must be %q for the postgres backend, other tables are only reachable through the rest backend", MigratedTable)
	}
	return nil
}
