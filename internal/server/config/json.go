package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophgate/internal/flagx"
	"github.com/dmitrijs2005/gophgate/internal/timex"
)

// JsonConfig is the JSON form of Config. Durations use timex.Duration so
// "1m" and integer nanoseconds are both accepted.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	ClientIDs                    []string       `json:"client_ids"`
	DemoUsername                 string         `json:"demo_username"`
	DemoPassword                 string         `json:"demo_password"`
	Debug                        *bool          `json:"debug"`
}

// parseJson loads the file named by -c/-config into config. Only fields
// present in the file are applied. Read or parse failures panic.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigFileFlag()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if len(c.ClientIDs) > 0 {
		config.ClientIDs = c.ClientIDs
	}
	if c.DemoUsername != "" {
		config.DemoUsername = c.DemoUsername
	}
	if c.DemoPassword != "" {
		config.DemoPassword = c.DemoPassword
	}
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
}
