package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophgate/internal/flagx"
	"github.com/dmitrijs2005/gophgate/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration so they can be written as "15s" or integer nanoseconds.
type JsonConfig struct {
	BaseURI         string         `json:"base_uri"`
	AuthURI         string         `json:"auth_uri"`
	AuthClientID    string         `json:"auth_client_id"`
	TokenPath       string         `json:"token_path"`
	LogoutPath      string         `json:"logout_path"`
	LoginPath       string         `json:"login_path"`
	GRPCAddr        string         `json:"grpc_addr"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	RefreshTimeout  timex.Duration `json:"refresh_timeout"`
	WaitTimeout     timex.Duration `json:"wait_timeout"`
	StoreKind       string         `json:"store_kind"`
	StoreDSN        string         `json:"store_dsn"`
	StorePassphrase string         `json:"store_passphrase"`
	ClientDebug     *bool          `json:"client_debug"`
}

// parseJson overlays cfg with the JSON file named by -c/-config. Fields
// absent from the file keep their current values. It panics when the file
// cannot be read or parsed.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.BaseURI, jc.BaseURI)
	setString(&cfg.AuthURI, jc.AuthURI)
	setString(&cfg.AuthClientID, jc.AuthClientID)
	setString(&cfg.TokenPath, jc.TokenPath)
	setString(&cfg.LogoutPath, jc.LogoutPath)
	setString(&cfg.LoginPath, jc.LoginPath)
	setString(&cfg.GRPCAddr, jc.GRPCAddr)
	setString(&cfg.StoreKind, jc.StoreKind)
	setString(&cfg.StoreDSN, jc.StoreDSN)
	setString(&cfg.StorePassphrase, jc.StorePassphrase)

	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RefreshTimeout.Duration > 0 {
		cfg.RefreshTimeout = jc.RefreshTimeout.Duration
	}
	if jc.WaitTimeout.Duration > 0 {
		cfg.WaitTimeout = jc.WaitTimeout.Duration
	}
	if jc.ClientDebug != nil {
		cfg.ClientDebug = *jc.ClientDebug
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
