package config

import "time"

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds runtime settings for the gophgate CLI.
//
// BaseURI is the API that requests are dispatched to. AuthURI with TokenPath,
// LogoutPath and LoginPath form the auth server endpoints. GRPCAddr is the
// auth server's gRPC health endpoint. StoreKind selects
// the credential store; StoreDSN is its file path or redis URL. A non-empty
// StorePassphrase seals stored values.
type Config struct {
	BaseURI        string
	AuthURI        string
	AuthClientID   string
	TokenPath      string
	LogoutPath     string
	LoginPath      string
	GRPCAddr       string
	RequestTimeout time.Duration
	RefreshTimeout time.Duration
	WaitTimeout    time.Duration

	StoreKind       string
	StoreDSN        string
	StorePassphrase string

	ClientDebug bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURI = "http://127.0.0.1:8080/api"
	c.AuthURI = "http://127.0.0.1:8080"
	c.AuthClientID = "gophgate-cli"
	c.TokenPath = "/token"
	c.LogoutPath = "/logout"
	c.LoginPath = "/login"
	c.GRPCAddr = "127.0.0.1:50051"
	c.RequestTimeout = 30 * time.Second
	c.RefreshTimeout = 15 * time.Second
	c.WaitTimeout = 30 * time.Second
	c.StoreKind = StoreMemory
	c.StoreDSN = ""
	c.StorePassphrase = ""
	c.ClientDebug = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

func (c *Config) TokenURL() string {
	return c.AuthURI + c.TokenPath
}

func (c *Config) LogoutURL() string {
	return c.AuthURI + c.LogoutPath
}

func (c *Config) LoginURL() string {
	return c.AuthURI + c.LoginPath
}
