package monitoring

type Config struct {
	Port             int `default:"6601"`
	URLPrefix        string
	MetricEnabled    bool
	ProfilingEnabled bool
	// Linger keeps the server running after the work is done, in seconds.
	Linger int
}

func (c *Config) IsEnabled() bool { return c.MetricEnabled || c.ProfilingEnabled }
