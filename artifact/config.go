package artifact

import (
	"fmt"
	"os"
)

// DefaultFileMode is the permission applied to written artifacts.
const DefaultFileMode os.FileMode = 0o644

// Config holds artifact writer configuration.
type Config struct {
	// BaseDir resolves relative destination paths. Empty means the
	// process working directory.
	BaseDir string `yaml:"dir" mapstructure:"dir"`

	// FileMode is applied to every written file. Defaults to 0644.
	FileMode os.FileMode `yaml:"file_mode" mapstructure:"file_mode"`

	// Confine restricts destinations to BaseDir: absolute paths and paths
	// that climb out of it are refused. Network-facing callers set it.
	Confine bool `yaml:"confine" mapstructure:"confine"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.FileMode == 0 {
		c.FileMode = DefaultFileMode
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.FileMode&0o200 == 0 {
		return fmt.Errorf("artifact: file_mode %o is not owner-writable", c.FileMode)
	}
	return nil
}
