package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Frontend Frontend `koanf:"frontend"`
	Auth     Auth     `koanf:"auth"`
	Google   Google   `koanf:"google"`
	Stripe   Stripe   `koanf:"stripe"`
	Checkout Checkout `koanf:"checkout"`
	Database Database `koanf:"db"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

// Auth configures validation of bearer tokens issued by the identity provider.
type Auth struct {
	JwtSecret string `koanf:"jwtsecret"`
	Issuer    string `koanf:"issuer"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
}

type Stripe struct {
	SecretKey string `koanf:"secretkey"`
}

// Checkout tunes the join flow session lifecycle.
type Checkout struct {
	// ResetDelaySeconds is how long after the dialog closes the session state
	// is wiped, so the client can finish its closing animation before the
	// rendered content changes.
	ResetDelaySeconds int `koanf:"resetdelayseconds"`
	// SessionTTLMinutes is the idle time after which an abandoned session is
	// swept by the background job.
	SessionTTLMinutes int `koanf:"sessionttlminutes"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:3000",
		Frontend: Frontend{
			Enabled: true,
		},
		Auth: Auth{
			Issuer: "gatherly",
		},
		Checkout: Checkout{
			ResetDelaySeconds: 1,
			SessionTTLMinutes: 30,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "gatherly",
			Pass:   "",
			Name:   "gatherly",
			Schema: "gatherly",
		},
	}, "koanf"), nil)
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
		Prefix: "GATHERLY_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "GATHERLY_")), "_", ".")
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

	return app, nil
}
