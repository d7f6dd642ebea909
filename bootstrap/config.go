package bootstrap

import (
	"github.com/kbukum/iockit/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.Config (value embedding) satisfies it
// through promoted methods.
//
// Example:
//
//	type MyConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Session web.SessionConfig `yaml:"session" mapstructure:"session"`
//	}
//
//	app, err := bootstrap.NewApp[*MyConfig](&cfg)
type Config interface {
	GetConfig() *config.Config
	ApplyDefaults()
	Validate() error
}
