package models

// StoreBackend names the document store implementation.
type StoreBackend string

const (
	BackendYAML  StoreBackend = "yaml"
	BackendMongo StoreBackend = "mongo"
)

// AuthProvider names the authentication adapter implementation.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderOAuth2 AuthProvider = "oauth2"
)

// IDScheme controls how new task IDs are generated.
type IDScheme string

const (
	IDSchemeSequential IDScheme = "sequential"
	IDSchemeRandom     IDScheme = "random"
)

// MongoConfig holds connection settings for the MongoDB task store.
type MongoConfig struct {
	URI        string `yaml:"uri" mapstructure:"uri"`
	Database   string `yaml:"database" mapstructure:"database"`
	Collection string `yaml:"collection" mapstructure:"collection"`
}

// OAuth2Config holds the client settings for the OAuth2 password grant.
type OAuth2Config struct {
	ClientID     string   `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string   `yaml:"client_secret" mapstructure:"client_secret"`
	TokenURL     string   `yaml:"token_url" mapstructure:"token_url"`
	Scopes       []string `yaml:"scopes,omitempty" mapstructure:"scopes"`
}

// GlobalConfig holds system-wide settings read from .pulseconfig via Viper.
type GlobalConfig struct {
	StoreBackend  StoreBackend `yaml:"store_backend" mapstructure:"store_backend"`
	Mongo         MongoConfig  `yaml:"mongo" mapstructure:"mongo"`
	AuthProvider  AuthProvider `yaml:"auth_provider" mapstructure:"auth_provider"`
	OAuth2        OAuth2Config `yaml:"oauth2" mapstructure:"oauth2"`
	PageLimit     int          `yaml:"page_limit" mapstructure:"page_limit"`
	IDScheme      IDScheme     `yaml:"id_scheme" mapstructure:"id_scheme"`
	ImportOffset  string       `yaml:"import_offset" mapstructure:"import_offset"`
	Locale        string       `yaml:"locale" mapstructure:"locale"`
	Observability bool         `yaml:"observability" mapstructure:"observability"`
}
