package config

import (
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/techwm-project/techwm/pkg/config/types"
)

type Option func(options *Params)

func WithFileName(name string) Option {
	return func(options *Params) {
		options.FileName = name
	}
}

func WithFileType(ftype string) Option {
	return func(options *Params) {
		options.FileType = ftype
	}
}

func WithDefaultConfig(cfg types.TechwmConfig) Option {
	return func(options *Params) {
		options.DefaultConfig = cfg
	}
}

func WithFileHandler(handler func(name string) error) Option {
	return func(options *Params) {
		options.FileHandler = handler
	}
}

func NoopConfigHandler(string) error {
	return nil
}

// WriteConfigHandler writes the current configuration to fileName as yaml.
func WriteConfigHandler(fileName string) error {
	cfg, err := Get()
	if err != nil {
		return err
	}

	cfgBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	flags := os.O_CREATE | os.O_TRUNC | os.O_WRONLY
	f, err := os.OpenFile(fileName, flags, os.FileMode(0o644)) //nolint:gomnd
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(cfgBytes); err != nil {
		return err
	}
	return nil
}

// ReadConfigHandler merges fileName into the configuration. A missing file
// is not an error.
func ReadConfigHandler(fileName string) error {
	if _, err := os.Stat(fileName); err != nil {
		if isNotExist(err) {
			return nil
		}
		return err
	}
	viper.SetConfigFile(fileName)
	return viper.ReadInConfig()
}
