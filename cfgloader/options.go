package cfgloader

const defaultDir = "./config"

// Options holds configuration options for Load and MustLoad.
type Options struct {
	// Silent disables logging of the loaded config when set to true.
	Silent bool
	// Dir is the directory holding ${ENVIRONMENT}.yaml files.
	Dir string
	// Environment overrides the ENVIRONMENT variable.
	Environment string
}

// Option is a functional option for configuring MustLoad behavior.
type Option func(*Options)

// WithSilent disables config logging.
func WithSilent() Option {
	return func(o *Options) {
		o.Silent = true
	}
}

// WithDir sets the directory config files are read from.
func WithDir(dir string) Option {
	return func(o *Options) {
		o.Dir = dir
	}
}

// WithEnvironment selects the config file without consulting ENVIRONMENT.
func WithEnvironment(env string) Option {
	return func(o *Options) {
		o.Environment = env
	}
}

func buildOptions(opts []Option) Options {
	o := Options{Dir: defaultDir}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
