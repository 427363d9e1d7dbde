// Package core contains the business logic of SkillPulse: the task list,
// add, edit, and login state modules, the remote store adapter, task ID
// generation, localization, day-log import, and configuration.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/skillpulse/pkg/models"
	"golang.org/x/text/language"
)

// ConfigFileName is the base name of the global configuration file.
const ConfigFileName = ".pulseconfig"

// ConfigurationManager loads and validates the global configuration.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading .pulseconfig and PULSE_* environment variables.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		StoreBackend: models.BackendYAML,
		Mongo: models.MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "skillpulse",
			Collection: "tasks",
		},
		AuthProvider:  models.ProviderLocal,
		PageLimit:     models.DefaultPageLimit,
		IDScheme:      models.IDSchemeSequential,
		ImportOffset:  DefaultImportOffset,
		Locale:        "en",
		Observability: true,
	}
}

// LoadGlobalConfig reads .pulseconfig from the base path. Missing keys
// and a missing file fall back to defaults; PULSE_* environment variables
// override both (PULSE_STORE_BACKEND for store.backend).
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.backend", string(cfg.StoreBackend))
	v.SetDefault("store.mongo.uri", cfg.Mongo.URI)
	v.SetDefault("store.mongo.database", cfg.Mongo.Database)
	v.SetDefault("store.mongo.collection", cfg.Mongo.Collection)
	v.SetDefault("auth.provider", string(cfg.AuthProvider))
	v.SetDefault("auth.oauth2.client_id", "")
	v.SetDefault("auth.oauth2.client_secret", "")
	v.SetDefault("auth.oauth2.token_url", "")
	v.SetDefault("auth.oauth2.scopes", []string{})
	v.SetDefault("tasks.page_limit", cfg.PageLimit)
	v.SetDefault("tasks.id_scheme", string(cfg.IDScheme))
	v.SetDefault("tasks.import_offset", cfg.ImportOffset)
	v.SetDefault("locale", cfg.Locale)
	v.SetDefault("observability.enabled", cfg.Observability)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	cfg.StoreBackend = models.StoreBackend(v.GetString("store.backend"))
	cfg.Mongo.URI = v.GetString("store.mongo.uri")
	cfg.Mongo.Database = v.GetString("store.mongo.database")
	cfg.Mongo.Collection = v.GetString("store.mongo.collection")
	cfg.AuthProvider = models.AuthProvider(v.GetString("auth.provider"))
	cfg.OAuth2.ClientID = v.GetString("auth.oauth2.client_id")
	cfg.OAuth2.ClientSecret = v.GetString("auth.oauth2.client_secret")
	cfg.OAuth2.TokenURL = v.GetString("auth.oauth2.token_url")
	cfg.OAuth2.Scopes = v.GetStringSlice("auth.oauth2.scopes")
	cfg.PageLimit = v.GetInt("tasks.page_limit")
	cfg.IDScheme = models.IDScheme(v.GetString("tasks.id_scheme"))
	cfg.ImportOffset = v.GetString("tasks.import_offset")
	cfg.Locale = v.GetString("locale")
	cfg.Observability = v.GetBool("observability.enabled")

	return cfg, nil
}

// ValidateConfig checks a GlobalConfig for invalid field values and
// reports all of them at once.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	switch cfg.StoreBackend {
	case models.BackendYAML:
	case models.BackendMongo:
		if cfg.Mongo.URI == "" {
			errs = append(errs, "store.mongo.uri must not be empty")
		}
		if cfg.Mongo.Database == "" || cfg.Mongo.Collection == "" {
			errs = append(errs, "store.mongo.database and store.mongo.collection must not be empty")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.backend %q is invalid, must be one of: yaml, mongo", cfg.StoreBackend))
	}

	switch cfg.AuthProvider {
	case models.ProviderLocal:
	case models.ProviderOAuth2:
		if cfg.OAuth2.TokenURL == "" {
			errs = append(errs, "auth.oauth2.token_url must be set when auth.provider is oauth2")
		}
	default:
		errs = append(errs, fmt.Sprintf("auth.provider %q is invalid, must be one of: local, oauth2", cfg.AuthProvider))
	}

	if cfg.PageLimit <= 0 {
		errs = append(errs, fmt.Sprintf("tasks.page_limit must be positive, got %d", cfg.PageLimit))
	}

	if cfg.IDScheme != models.IDSchemeSequential && cfg.IDScheme != models.IDSchemeRandom {
		errs = append(errs, fmt.Sprintf("tasks.id_scheme %q is invalid, must be one of: sequential, random", cfg.IDScheme))
	}

	if _, err := ParseOffset(cfg.ImportOffset); err != nil {
		errs = append(errs, fmt.Sprintf("tasks.import_offset %q is invalid, expected a form like -03:00", cfg.ImportOffset))
	}

	if !supportedLocale(cfg.Locale) {
		errs = append(errs, fmt.Sprintf("locale %q is not supported, must be one of: en, pt-BR", cfg.Locale))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func supportedLocale(locale string) bool {
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	_, _, confidence := language.NewMatcher(SupportedLocales).Match(tag)
	return confidence != language.No
}
