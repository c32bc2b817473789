package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdwrap/pkg/config"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	assert.Equal(t, 80, cfg.TextWidth)
	assert.Equal(t, config.NewlineAuto, cfg.Newline)
	assert.Equal(t, config.WrapOptimal, cfg.WrapAlgorithm)
	assert.False(t, cfg.TableColumnsEqualWidth)
	assert.NoError(t, cfg.Validate())
}

func TestNewline_Terminator(t *testing.T) {
	t.Parallel()

	assert.Empty(t, config.NewlineAuto.Terminator())
	assert.Equal(t, "\n", config.NewlineLF.Terminator())
	assert.Equal(t, "\r\n", config.NewlineCRLF.Terminator())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		field  string
	}{
		{"zero width", func(c *config.Config) { c.TextWidth = 0 }, "text_width"},
		{"huge width", func(c *config.Config) { c.TextWidth = 8000 }, "text_width"},
		{"newline", func(c *config.Config) { c.Newline = "cr" }, "newline"},
		{"algorithm", func(c *config.Config) { c.WrapAlgorithm = "greedy" }, "wrap_algorithm"},
		{"log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"},
		{"exclude", func(c *config.Config) { c.Exclude = []string{"docs/[a-"} }, "exclude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var verr *config.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("joins every problem", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.TextWidth = -1
		cfg.Newline = "x"
		cfg.Write, cfg.Check = true, true
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "text_width")
		assert.Contains(t, err.Error(), "newline")
		assert.Contains(t, err.Error(), "mutually exclusive")
	})
}

func TestYAML(t *testing.T) {
	t.Parallel()

	t.Run("keeps defaults for missing keys", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.FromYAML([]byte("text_width: 72\nnewline: crlf\n"))
		require.NoError(t, err)
		assert.Equal(t, 72, cfg.TextWidth)
		assert.Equal(t, config.NewlineCRLF, cfg.Newline)
		assert.Equal(t, config.WrapOptimal, cfg.WrapAlgorithm)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		_, err := config.FromYAML([]byte("text_widht: 72\n"))
		require.Error(t, err)
	})

	t.Run("overlay can reset a flag", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.TableColumnsEqualWidth = true
		require.NoError(t, cfg.Overlay([]byte("table_columns_equal_width: false\n")))
		assert.False(t, cfg.TableColumnsEqualWidth)
		require.NoError(t, cfg.Overlay(nil))
	})

	t.Run("round trip omits CLI fields", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.TextWidth = 100
		cfg.Write = true
		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.NotContains(t, string(data), "write")

		back, err := config.FromYAML(data)
		require.NoError(t, err)
		assert.Equal(t, 100, back.TextWidth)
		assert.False(t, back.Write)
	})

	t.Run("header", func(t *testing.T) {
		t.Parallel()

		data, err := config.NewConfig().ToYAMLWithHeader("# gomdwrap")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "# gomdwrap\n\ntext_width: 80\n"))
	})
}

func TestClone(t *testing.T) {
	t.Parallel()

	var nilCfg *config.Config
	assert.Nil(t, nilCfg.Clone())

	cfg := config.NewConfig()
	clone := cfg.Clone()
	require.NotSame(t, cfg, clone)
	clone.TextWidth = 10
	assert.Equal(t, 80, cfg.TextWidth)

	cfg.Exclude = []string{"vendor/**"}
	clone = cfg.Clone()
	clone.Exclude[0] = "changed"
	assert.Equal(t, []string{"vendor/**"}, cfg.Exclude, "clone owns its exclude list")
}
