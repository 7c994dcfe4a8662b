package core

import (
	"fmt"
	"strings"
)

type EncodingConfig struct {
	WrapEnvelopes bool `koanf:"wrap_envelopes" mapstructure:"wrap_envelopes"`
	EncodeResults bool `koanf:"encode_results" mapstructure:"encode_results"`
}

type Config struct {
	ServiceName     string         `koanf:"service_name" mapstructure:"service_name"`
	PermissionOrder []string       `koanf:"permission_order" mapstructure:"permission_order"`
	Encoding        EncodingConfig `koanf:"encoding" mapstructure:"encoding"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:     "resources",
		PermissionOrder: []string{string(PermissionWrite), string(PermissionRead)},
		Encoding: EncodingConfig{
			WrapEnvelopes: true,
			EncodeResults: true,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	for _, raw := range c.PermissionOrder {
		if !Permission(strings.TrimSpace(raw)).Valid() {
			return fmt.Errorf("core: permission_order entry %q is not a valid permission", raw)
		}
	}
	return nil
}

func (c Config) permissionOrder() []Permission {
	if len(c.PermissionOrder) == 0 {
		return DefaultPermissionOrder
	}
	order := make([]Permission, 0, len(c.PermissionOrder))
	for _, raw := range c.PermissionOrder {
		order = append(order, Permission(strings.TrimSpace(raw)))
	}
	return order
}
