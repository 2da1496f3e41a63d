package log

import "time"

const (
	EncodingJSON    = "json"
	EncodingConsole = "console"

	OutputStdio = "stdio"
	OutputFile  = "file"
)

type Config struct {
	Name     string `conf:"name" yaml:"name" json:"name"`
	Debug    bool   `conf:"debug" yaml:"debug" json:"debug"`
	Level    string `conf:"level" yaml:"level" json:"level"`
	Encoding string `conf:"encoding" yaml:"encoding" json:"encoding"`
	Output   string `conf:"output" yaml:"output" json:"output"`

	File FileConfig `conf:"file" yaml:"file" json:"file"`
}

// FileConfig controls rotation when Output is "file".
type FileConfig struct {
	Path       string        `conf:"path" yaml:"path" json:"path"`
	MaxSize    int           `conf:"max_size" yaml:"max_size" json:"max_size"`
	MaxAge     time.Duration `conf:"max_age" yaml:"max_age" json:"max_age"`
	MaxBackups int           `conf:"max_backups" yaml:"max_backups" json:"max_backups"`
	LocalTime  bool          `conf:"local_time" yaml:"local_time" json:"local_time"`
	Compress   bool          `conf:"compress" yaml:"compress" json:"compress"`
}

func DefaultConfig() Config {
	return Config{
		Name:     "datavault",
		Level:    "info",
		Encoding: EncodingJSON,
		Output:   OutputStdio,
		File: FileConfig{
			Path:       "logs/datavault.log",
			MaxSize:    100,
			MaxAge:     7 * 24 * time.Hour,
			MaxBackups: 10,
		},
	}
}
