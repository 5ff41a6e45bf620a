package payload

import (
	"fmt"
	"os"

	"github.com/tonecfg/tonecfg/pkg/shell"
	"github.com/tonecfg/tonecfg/pkg/yaml"
)

// Parse reads a YAML (or JSON) payload description, ${ENV} and ${ENV:default}
// are substituted first, so secrets can stay out of the file.
func Parse(b []byte) (*Config, error) {
	b = []byte(shell.ReplaceEnvVars(string(b)))

	var spec Spec
	if err := yaml.UnmarshalStrict(b, &spec); err != nil {
		return nil, fmt.Errorf("payload: parse: %w", err)
	}

	return New(spec), nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Dump returns the YAML form of the payload, secrets included.
func Dump(c *Config) ([]byte, error) {
	return yaml.Encode(c.Spec(), 2)
}
