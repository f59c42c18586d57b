// Package cfgloader provides a simple way to load and validate configuration at the start of an application.
package cfgloader

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/mask"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"

	envVar = "ENVIRONMENT"

	CodeInvalidEnvironment = "INVALID_ENVIRONMENT"
	CodeConfigNotFound     = "CONFIG_NOT_FOUND"
	CodeInvalidConfig      = "INVALID_CONFIG"
)

// MustLoad loads and validates configuration from a YAML file based on the ENVIRONMENT variable.
// The files must be named in the format ${ENVIRONMENT}.yaml and located in the config directory at the root of the project.
//
// The configuration struct should use `yaml` struct tags to map fields to the YAML file structure.
//
// Default values for configuration fields can be set using the `default` struct tag. These values are applied before validation
// if the corresponding fields are not explicitly defined in the YAML file.
//
// Validations are done using the go-playground/validator package.
// See https://pkg.go.dev/github.com/go-playground/validator/v10 for more information.
//
// Example:
//
//	type Config struct {
//	    Host        string `yaml:"host" validate:"required"`  // Maps to the "host" field in the YAML file, required
//	    Port        int    `yaml:"port" default:"8080"`       // Maps to the "port" field in the YAML file, defaults to 8080
//	    LogLevel    string `yaml:"log_level" default:"info"`  // Maps to the "log_level" field, defaults to "info"
//	}
//
// If the YAML file does not define these fields, the default values will be applied.
// Any failure is logged and terminates the process.
func MustLoad[T any](opts ...Option) T {
	config, err := Load[T](opts...)
	if err != nil {
		logger.Named("cfgloader").Fatalx(err)
	}
	return config
}

// Load is MustLoad that returns the error instead of exiting.
func Load[T any](opts ...Option) (T, error) {
	var config T

	o := buildOptions(opts)

	_ = godotenv.Load()

	env := o.Environment
	if env == "" {
		env = os.Getenv(envVar)
	}
	if !slices.Contains([]string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}, env) {
		return config, errx.New(
			"ENVIRONMENT env variable is not set or invalid. Choices are: production, staging, dev, local, test",
			errx.WithCode(CodeInvalidEnvironment),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"environment": env}),
		)
	}

	return LoadFile[T](filepath.Join(o.Dir, env+".yaml"), opts...)
}

// LoadFile loads, defaults and validates configuration from the YAML file at path.
// Environment variables referenced as ${VAR} in the file are expanded.
func LoadFile[T any](path string, opts ...Option) (T, error) {
	var config T

	if reflect.ValueOf(config).Kind() == reflect.Ptr {
		return config, errx.New("config type must not be a pointer", errx.WithCode(CodeInvalidConfig))
	}

	o := buildOptions(opts)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, errx.New(
			"config file not found. Make sure that the yaml file exists for each environment",
			errx.WithCode(CodeConfigNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"path": path}),
		)
	}
	if err != nil {
		return config, errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
	}

	data = []byte(os.ExpandEnv(string(data)))

	if err = yaml.Unmarshal(data, &config); err != nil {
		return config, errx.Wrap(err,
			errx.WithCode(CodeInvalidConfig),
			errx.WithDetails(errx.D{"path": path}),
		)
	}

	if err = defaults.Set(&config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
	}

	if err = validateConfig(&config); err != nil {
		return config, errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
	}

	if !o.Silent {
		logger.Named("cfgloader").
			With("path", path, "config", mask.StructToOrdMap(config)).
			Info("config loaded")
	}

	return config, nil
}

func validateConfig(config any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)

	failedFields := make(errx.M)
	if errs, ok := err.(validator.ValidationErrors); ok { //nolint: errorlint // Using type assertion for validator errors handling
		for _, err := range errs {
			tagErr := err.Tag()
			if err.Param() != "" {
				tagErr += "=" + err.Param()
			}
			failedFields[err.Namespace()] = tagErr
		}
	} else if err != nil {
		return errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
	}

	if len(failedFields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(failedFields))
	for k := range failedFields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return errx.New(
		"invalid config fields: "+strings.Join(keys, ", "),
		errx.WithCode(CodeInvalidConfig),
		errx.WithType(errx.T_Validation),
		errx.WithFields(failedFields),
	)
}
