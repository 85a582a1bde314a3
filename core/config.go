package core

import (
	"fmt"
	"strings"
)

// Config carries the per-server authorization settings a strategy is seeded
// with. Endpoint fields mirror the persisted state shape so a freshly
// configured strategy and a restored one look identical to callers.
type Config struct {
	AuthType        string `koanf:"auth_type" mapstructure:"auth_type"`
	AppID           string `koanf:"app_id" mapstructure:"app_id"`
	Scope           string `koanf:"scope" mapstructure:"scope"`
	RedirectURI     string `koanf:"redirect_uri" mapstructure:"redirect_uri"`
	AuthorizeURI    string `koanf:"authorize_uri" mapstructure:"authorize_uri"`
	TokenURI        string `koanf:"token_uri" mapstructure:"token_uri"`
	RegistrationURI string `koanf:"registration_uri" mapstructure:"registration_uri"`
}

func DefaultConfig() Config {
	return Config{
		AuthType: DefaultStrategyTag,
	}
}

func (c Config) Validate() error {
	authType := strings.TrimSpace(strings.ToLower(c.AuthType))
	if authType == "" {
		return fmt.Errorf("core: auth_type is required")
	}
	if authType == "oauth2" && strings.TrimSpace(c.AppID) == "" {
		return fmt.Errorf("core: app_id is required for oauth2 authorization")
	}
	return nil
}

// StateMap renders the config as strategy state so ImportState can seed a
// freshly created strategy. Empty fields are omitted, matching the
// keep-on-absent import contract.
func (c Config) StateMap() StateMap {
	state := StateMap{}
	set := func(key, value string) {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			state[key] = trimmed
		}
	}
	set("app_id", c.AppID)
	set("scope", c.Scope)
	set("redirect_uri", c.RedirectURI)
	set("authorize_uri", c.AuthorizeURI)
	set("token_uri", c.TokenURI)
	set("registration_uri", c.RegistrationURI)
	return state
}
