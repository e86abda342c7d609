// internal/utils/logger/config.go
package logger

type Config struct {
	LogFile     string // empty disables the file sink
	MaxSize     int    // megabytes
	MaxAge      int    // days
	MaxBackups  int    // rotated files kept
	Compress    bool
	Development bool
}

// DefaultConfig returns the stdout-only configuration.
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "",
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: false,
	}
}
