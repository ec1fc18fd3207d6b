package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

const (
	ModeDiscriminated = "discriminated"
	ModeFlat          = "flat"

	OutputJSON = "json"
	OutputYAML = "yaml"
)

type Config struct {
	Templates string `json:"templates"` // file or directory of templates
	TypesDir  string `json:"typesDir"`  // extension type catalog, empty = builtins only
	Mode      string `json:"mode"`      // discriminated | flat
	Output    string `json:"output"`    // json | yaml

	Schema string `json:"schema"`
	DBURL  string `json:"dbUrl"`
	Apply  bool   `json:"apply"`

	DBMaxOpenConns    int    `json:"dbMaxOpenConns"`
	DBMaxIdleConns    int    `json:"dbMaxIdleConns"`
	DBConnMaxLifetime string `json:"dbConnMaxLifetime"` // Go duration, e.g. "30m"

	LogLevel    string `json:"logLevel"`
	LogEncoding string `json:"logEncoding"`
}

func Default() Config {
	return Config{
		Templates:   "templates",
		TypesDir:    "",
		Mode:        ModeDiscriminated,
		Output:      OutputYAML,
		Schema:      "public",
		DBURL:       "",
		Apply:       false,

		DBMaxOpenConns:    4,
		DBMaxIdleConns:    2,
		DBConnMaxLifetime: "30m",

		LogLevel:    "info",
		LogEncoding: "console",
	}
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeDiscriminated, ModeFlat:
	default:
		return fmt.Errorf("unknown mode %q (want %s or %s)", c.Mode, ModeDiscriminated, ModeFlat)
	}
	switch c.Output {
	case OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output %q (want %s or %s)", c.Output, OutputJSON, OutputYAML)
	}
	if strings.TrimSpace(c.Templates) == "" {
		return errors.New("templates path is empty")
	}
	if c.Apply && strings.TrimSpace(c.DBURL) == "" {
		return errors.New("apply requires a database URL")
	}
	if c.DBMaxOpenConns < 0 || c.DBMaxIdleConns < 0 {
		return errors.New("connection limits must not be negative")
	}
	if _, err := c.ConnMaxLifetime(); err != nil {
		return err
	}
	return nil
}

// ConnMaxLifetime parses DBConnMaxLifetime; empty means no override.
func (c Config) ConnMaxLifetime() (time.Duration, error) {
	if strings.TrimSpace(c.DBConnMaxLifetime) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.DBConnMaxLifetime))
	if err != nil {
		return 0, errors.Wrap(err, "dbConnMaxLifetime")
	}
	return d, nil
}

func loadJSON(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	if err := json.Unmarshal(b, c); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvInt(k string, fallback int) int {
	if v, ok := os.LookupEnv(k); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "1" || v == "true" || v == "yes" {
			return true
		}
		if v == "0" || v == "false" || v == "no" {
			return false
		}
	}
	return fallback
}

// Load reads the defaults, then the JSON file at path, then ENTITYFORGE_* variables. A missing
// file is not an error; an unreadable or malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			if err := loadJSON(path, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	cfg.Templates = getenv("ENTITYFORGE_TEMPLATES", cfg.Templates)
	cfg.TypesDir = getenv("ENTITYFORGE_TYPES_DIR", cfg.TypesDir)
	cfg.Mode = getenv("ENTITYFORGE_MODE", cfg.Mode)
	cfg.Output = getenv("ENTITYFORGE_OUTPUT", cfg.Output)
	cfg.Schema = getenv("ENTITYFORGE_SCHEMA", cfg.Schema)
	cfg.DBURL = getenv("ENTITYFORGE_DB_URL", cfg.DBURL)
	cfg.Apply = getenvBool("ENTITYFORGE_APPLY", cfg.Apply)
	cfg.DBMaxOpenConns = getenvInt("ENTITYFORGE_DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = getenvInt("ENTITYFORGE_DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)
	cfg.DBConnMaxLifetime = getenv("ENTITYFORGE_DB_CONN_MAX_LIFETIME", cfg.DBConnMaxLifetime)
	cfg.LogLevel = getenv("ENTITYFORGE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogEncoding = getenv("ENTITYFORGE_LOG_ENCODING", cfg.LogEncoding)
	return cfg, nil
}

// RegisterFlags declares the override flags on fs. Their defaults are only shown in help;
// ApplyFlags copies a flag into the config only when it was set on the command line.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("templates", d.Templates, "Templates file or directory")
	fs.String("types", d.TypesDir, "Extension type catalog directory")
	fs.String("mode", d.Mode, "Template mode (discriminated/flat)")
	fs.StringP("output", "o", d.Output, "Output format (json/yaml)")
	fs.String("log-level", d.LogLevel, "Log level")
	fs.String("log-encoding", d.LogEncoding, "Log encoding (console/json)")
}

// RegisterDDLFlags declares the flags of the ddl command.
func RegisterDDLFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("schema", d.Schema, "Postgres schema for generated tables")
	fs.String("db", d.DBURL, "Postgres URL")
	fs.Bool("apply", d.Apply, "Apply the generated DDL to the database")
}

// ApplyFlags overrides cfg with every flag of fs that was changed.
func ApplyFlags(fs *pflag.FlagSet, cfg *Config) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		v := strings.TrimSpace(f.Value.String())
		switch f.Name {
		case "templates":
			cfg.Templates = v
		case "types":
			cfg.TypesDir = v
		case "mode":
			cfg.Mode = v
		case "output":
			cfg.Output = v
		case "log-level":
			cfg.LogLevel = v
		case "log-encoding":
			cfg.LogEncoding = v
		case "schema":
			cfg.Schema = v
		case "db":
			cfg.DBURL = v
		case "apply":
			cfg.Apply, err = fs.GetBool("apply")
		}
	})
	return err
}
