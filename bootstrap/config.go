package bootstrap

import (
	"github.com/kbukum/edlflash/config"
)

// Config is the constraint on the configuration type of an App. Any struct
// embedding config.ServiceConfig gets GetServiceConfig and ApplyDefaults by
// promotion and only has to add Validate; config.AppConfig does.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
