package ezusb

// Config holds the installer configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// Progress is called after every uploaded chunk (optional)
	Progress ProgressFunc

	// ChunkSize is the maximum payload per control transfer.
	// Default and upper bound is MaxChunkSize (4 KiB).
	ChunkSize int
}

func defaultConfig() Config {
	return Config{
		ChunkSize: MaxChunkSize,
	}
}

// Option is a functional option for configuring the Installer.
type Option func(*Config)

// WithLogger sets a logger for install operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithProgress sets a callback invoked after every uploaded chunk.
//
// Example:
//
//	inst := ezusb.New(dev, ezusb.WithProgress(func(p ezusb.Progress) {
//	    fmt.Printf("%d/%d bytes\n", p.BytesWritten, p.TotalBytes)
//	}))
func WithProgress(fn ProgressFunc) Option {
	return func(c *Config) {
		c.Progress = fn
	}
}

// WithChunkSize sets the maximum payload per control transfer.
// Values outside (0, MaxChunkSize] are ignored.
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= MaxChunkSize {
			c.ChunkSize = size
		}
	}
}

// Progress describes the state of a running install.
type Progress struct {
	// Segment is the index of the segment being uploaded (0-based)
	Segment int

	// TotalSegments is the number of segments in the image
	TotalSegments int

	// BytesWritten is the number of payload bytes uploaded so far
	BytesWritten int

	// TotalBytes is the total payload size of the image
	TotalBytes int
}

// ProgressFunc receives Progress updates. Implementations should return
// quickly to avoid stalling the upload.
type ProgressFunc func(Progress)

// Logger is an optional logging interface accepted by the installer.
// It allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
