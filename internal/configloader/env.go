package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yaklabco/gomdwrap/pkg/config"
)

// envVarPrefix is the prefix of every gomdwrap environment variable.
const envVarPrefix = "GOMDWRAP_"

// envSetter applies one environment value to the config.
type envSetter func(cfg *config.Config, value string) error

// envMappings maps variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envSetter{
	"TEXT_WIDTH": intSetter(func(c *config.Config, v int) { c.TextWidth = v }),
	"TABLE_EQUAL": boolSetter(func(c *config.Config, v bool) {
		c.TableColumnsEqualWidth = v
	}),
	"NEWLINE": func(c *config.Config, v string) error {
		c.Newline = config.Newline(v)
		return nil
	},
	"DETECT_LANGUAGE": boolSetter(func(c *config.Config, v bool) { c.DetectCodeLanguage = v }),
	"WRAP_ALGORITHM": func(c *config.Config, v string) error {
		c.WrapAlgorithm = config.WrapAlgorithm(v)
		return nil
	},
	"LOG_LEVEL": func(c *config.Config, v string) error {
		c.LogLevel = v
		return nil
	},
	"BACKUP": boolSetter(func(c *config.Config, v bool) { c.Backup = v }),
	"EXCLUDE": func(c *config.Config, v string) error {
		c.Exclude = strings.Split(v, ",")
		return nil
	},
}

func intSetter(set func(*config.Config, int)) envSetter {
	return func(c *config.Config, value string) error {
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		set(c, i)
		return nil
	}
}

func boolSetter(set func(*config.Config, bool)) envSetter {
	return func(c *config.Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q (expected true/false/1/0)", value)
		}
		set(c, b)
		return nil
	}
}

// LoadFromEnv applies GOMDWRAP_* overrides to cfg. Empty variables are
// ignored.
func LoadFromEnv(cfg *config.Config) error {
	return loadFromEnv(cfg, os.LookupEnv)
}

func loadFromEnv(cfg *config.Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}
	for suffix, set := range envMappings {
		name := envVarPrefix + suffix
		value, ok := lookup(name)
		if !ok || value == "" {
			continue
		}
		if err := set(cfg, value); err != nil {
			return &config.ValidationError{Field: name, Value: value, Message: err.Error()}
		}
	}
	return nil
}
