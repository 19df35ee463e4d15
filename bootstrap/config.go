package bootstrap

import (
	"github.com/kbukum/sseclient/config"
)

// Config is the constraint for command configuration types. A struct that
// embeds config.ServiceConfig gets GetServiceConfig by promotion and
// usually overrides ApplyDefaults and Validate to cover its own sections.
//
//	type ListenConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Session session.Config `yaml:"session" mapstructure:"session"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
