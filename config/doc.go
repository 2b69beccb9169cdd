// Package config loads the edlflash configuration.
//
// Values are layered with Viper: config.yml (searched in the working
// directory, then next to the executable), a .env file loaded with
// godotenv, and EDLFLASH_* environment variables, each overriding the last.
// Underscores in variable names may separate sections or belong to a key:
//
//	EDLFLASH_DEBUG=true
//	EDLFLASH_FLASHER_ENCODING=gbk
//	EDLFLASH_FLASHER_TOOLS_DIR=/opt/qualcomm/tools
//
// # Usage
//
//	cfg, err := config.Load(config.WithConfigFile(path))
package config
