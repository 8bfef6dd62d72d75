package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string        `yaml:"env" env:"ENV" env-default:"local" env-description:"Environment" env-choices:"local,dev,prod"`
	ApiHost   string        `yaml:"api_host" env-default:"localhost"`
	ApiPort   int           `yaml:"api_port" env-default:"8080"`
	JwtSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	Postgres  `yaml:"postgres"`
}

type Postgres struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"5432"`
	User string `yaml:"user" env-default:"worthit"`
	Pass string `yaml:"pass" env-default:"worthit"`
	Db   string `yaml:"db" env-default:"worthit"`
}

func MustLoad() *Config {
	path := fetchConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config file does not exist: " + path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic("failed to read config: " + err.Error())
	}

	if cfg.JwtSecret == "" {
		panic("jwt secret is not set")
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
