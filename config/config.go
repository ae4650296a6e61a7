package config

import (
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"
)

const (
	CONFIG_PATH = "./res/config.yaml"

	// ENV_DATABASE_DSN overrides database.dsn when set.
	ENV_DATABASE_DSN = "MIGRATOR_DATABASE_DSN"

	EntityUsers    = "users"
	EntityProducts = "products"
	EntitySales    = "sales"
)

// ServiceConfig holds the configuration for the migrator.
type ServiceConfig struct {
	ServiceName    string        `yaml:"service_name" validate:"required"`
	LogLevel       string        `yaml:"loglevel" validate:"required"`
	LogFormat      string        `yaml:"log_format" validate:"omitempty,oneof=console json"`
	Database       Database      `yaml:"database" validate:"required"`
	Source         Source        `yaml:"source" validate:"required"`
	UsersConfig    EntitySource  `yaml:"users_config" validate:"required"`
	ProductsConfig EntitySource  `yaml:"products_config" validate:"required"`
	SalesConfig    EntitySource  `yaml:"sales_config" validate:"required"`
	Routines       RoutineConfig `yaml:"routines"`
	WriteRateLimit float64       `yaml:"write_rate_limit" validate:"gte=0"`
	Metrics        MetricsConfig `yaml:"metrics"`
}

// Source locates the delimited source files.
type Source struct {
	Directory string `yaml:"directory" validate:"required"`
	Encoding  string `yaml:"encoding"`
	Extension string `yaml:"extension"`
}

// EntitySource names the file of one entity and the column pattern its header must match.
type EntitySource struct {
	FileName      string `yaml:"file_name" validate:"required"`
	ColumnPattern string `yaml:"column_pattern" validate:"required"`
}

// RoutineConfig selects which migration routines run.
type RoutineConfig struct {
	MigrateUsers    bool `yaml:"migrate_users"`
	MigrateProducts bool `yaml:"migrate_products"`
	MigrateSales    bool `yaml:"migrate_sales"`
}

type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

type Database struct {
	Type string `yaml:"type" validate:"required,oneof=mongo postgres sqlite"`
	DSN  string `yaml:"dsn" validate:"required"`
	// For MongoDB
	MongoDB MongoDBConfig `yaml:"mongodb_config" validate:"omitempty"`
	// For PostgreSQL and SQLite
	SQL SQLConfig `yaml:"sql_config" validate:"omitempty"`
}

// MongoDBConfig holds the MongoDB specific settings.
type MongoDBConfig struct {
	Timeout          time.Duration      `yaml:"timeout"`
	Options          MongoServerOptions `yaml:"mongo_server_options"`
	ValidCollections []string           `yaml:"valid_collections"`
	ValidFields      []string           `yaml:"valid_fields"`
}

type SQLConfig struct {
	Options SQLServerOptions `yaml:"sql_server_options"`
}

type MongoServerOptions struct {
	APIVersion           string `yaml:"api_version"`
	SetStrict            bool   `yaml:"set_strict"`
	SetDeprecationErrors bool   `yaml:"set_deprecation_errors"`
}

type SQLServerOptions struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// ReadLocalConfig reads the service configuration from a YAML file at the specified path.
// It unmarshals the YAML content into a ServiceConfig struct and applies
// environment overrides. If there is an error reading the file or unmarshaling
// the content, it returns an error.
func ReadLocalConfig(configPath string) (*ServiceConfig, error) {
	config := &ServiceConfig{}

	yamlFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(yamlFile, config)
	if err != nil {
		return nil, err
	}

	config.ApplyEnv()

	return config, nil
}

// ApplyEnv overrides file values with environment variables.
func (c *ServiceConfig) ApplyEnv() {
	if dsn := os.Getenv(ENV_DATABASE_DSN); dsn != "" {
		c.Database.DSN = dsn
	}
}

// EnableOnly switches on exactly the named routines. Unknown names are ignored.
func (r *RoutineConfig) EnableOnly(entities []string) {
	enabled := ListToMap(entities)
	r.MigrateUsers = enabled[EntityUsers]
	r.MigrateProducts = enabled[EntityProducts]
	r.MigrateSales = enabled[EntitySales]
}

// ParseRoutineList splits a comma separated routine list, dropping blanks.
func ParseRoutineList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(strings.ToLower(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func BuildServerAPIOptions(cfg MongoServerOptions) *options.ServerAPIOptions {
	opts := options.ServerAPI(options.ServerAPIVersion(cfg.APIVersion))
	opts.SetStrict(cfg.SetStrict)
	opts.SetDeprecationErrors(cfg.SetDeprecationErrors)

	return opts
}

func ListToMap(list []string) map[string]bool {
	result := make(map[string]bool)
	for _, item := range list {
		result[item] = true
	}
	return result
}
