package internal

// Option is a functional option for configuring the serve runtime.
type Option func(*application)

type application struct {
	config  *Config
	baseDir string
}

// WithConfig sets the workspace configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithBaseDir sets the workspace directory.
func WithBaseDir(dir string) Option {
	return func(a *application) {
		a.baseDir = dir
	}
}
