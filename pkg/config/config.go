package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/techwm-project/techwm/pkg/config/types"
)

const (
	environmentVariablePrefix = "TECHWM"
	inferConfigTypes          = true
	automaticEnvVar           = true

	// DatabaseFileName is the bolt file holding the catalog and the ledger.
	DatabaseFileName = "techwm.db"

	DefaultHost            = "0.0.0.0"
	DefaultPort            = 1234
	DefaultShutdownTimeout = 10 * time.Second
)

var (
	environmentVariableReplace = strings.NewReplacer(".", "_")
	configDecoderHook          = viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc())
)

const (
	configType = "yaml"
	configName = "config"

	// FileName is the config file looked up in the repo directory.
	FileName = configName + "." + configType
)

// Default returns the configuration used when nothing overrides it. Paths
// are rooted at the repo directory.
func Default(path string) types.TechwmConfig {
	return types.TechwmConfig{
		Server: types.ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: types.Duration(DefaultShutdownTimeout),
		},
		Store: types.StoreConfig{
			Type: types.BoltDB,
			Path: filepath.Join(path, DatabaseFileName),
		},
	}
}

// Init writes the default configuration to the repo directory, unless a
// config file is already there, and returns the loaded result.
func Init(path string) (types.TechwmConfig, error) {
	if err := os.MkdirAll(path, os.FileMode(0o755)); err != nil { //nolint:gomnd
		return types.TechwmConfig{}, err
	}
	if _, err := os.Stat(configFilePath(path, configName, configType)); err == nil {
		return Load(path)
	}
	return initConfig(path, WithDefaultConfig(Default(path)), WithFileHandler(WriteConfigHandler))
}

// Load reads the config file in path if there is one, then applies
// TECHWM_ environment variables on top of the defaults.
func Load(path string) (types.TechwmConfig, error) {
	return initConfig(path, WithDefaultConfig(Default(path)), WithFileHandler(ReadConfigHandler))
}

type Params struct {
	FileName      string
	FileType      string
	FileHandler   func(fileName string) error
	DefaultConfig types.TechwmConfig
}

func initConfig(path string, opts ...Option) (types.TechwmConfig, error) {
	params := &Params{
		FileName:      configName,
		FileType:      configType,
		FileHandler:   NoopConfigHandler,
		DefaultConfig: Default(path),
	}

	for _, opt := range opts {
		opt(params)
	}

	viper.SetConfigName(params.FileName)
	viper.SetConfigType(params.FileType)
	viper.SetEnvPrefix(environmentVariablePrefix)
	viper.SetTypeByDefaultValue(inferConfigTypes)
	viper.SetEnvKeyReplacer(environmentVariableReplace)
	SetDefault(params.DefaultConfig)

	if err := params.FileHandler(configFilePath(path, params.FileName, params.FileType)); err != nil {
		return types.TechwmConfig{}, err
	}

	if automaticEnvVar {
		viper.AutomaticEnv()
	}

	out, err := Get()
	if err != nil {
		return types.TechwmConfig{}, err
	}
	return out, out.Validate()
}

func configFilePath(path, name, fileType string) string {
	return filepath.Join(path, fmt.Sprintf("%s.%s", name, fileType))
}

// SetDefault registers every leaf of cfg as a viper default. Values with a
// text form are stored as strings so environment overrides decode the same way.
func SetDefault(cfg types.TechwmConfig) {
	viper.SetDefault(types.ServerHost, cfg.Server.Host)
	viper.SetDefault(types.ServerPort, cfg.Server.Port)
	viper.SetDefault(types.ServerShutdownTimeout, cfg.Server.ShutdownTimeout.String())
	viper.SetDefault(types.StoreType, cfg.Store.Type.String())
	viper.SetDefault(types.StorePath, cfg.Store.Path)
	if len(cfg.Policy.Limits) > 0 {
		viper.SetDefault(types.PolicyLimits, cfg.Policy.Limits)
	}
}

// Get decodes the current viper state.
func Get() (types.TechwmConfig, error) {
	var out types.TechwmConfig
	if err := viper.Unmarshal(&out, configDecoderHook); err != nil {
		return types.TechwmConfig{}, err
	}
	return out, nil
}

// Set overrides a single key, e.g. from a command line flag.
func Set(key string, value interface{}) {
	viper.Set(key, value)
}

// Reset clears all configuration, useful for testing.
func Reset() {
	viper.Reset()
}

// Getenv wraps os.Getenv and retrieves the value of the environment variable named by the config key.
// It returns the value, which will be empty if the variable is not present.
func Getenv(key string) string {
	return os.Getenv(KeyAsEnvVar(key))
}

// KeyAsEnvVar returns the environment variable corresponding to a config key
func KeyAsEnvVar(key string) string {
	return strings.ToUpper(
		fmt.Sprintf("%s_%s", environmentVariablePrefix, environmentVariableReplace.Replace(key)),
	)
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
