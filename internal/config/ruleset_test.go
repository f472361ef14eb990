package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRuleset(t *testing.T) {
	rs := DefaultRuleset()

	assert.NotEmpty(t, rs.SuspiciousTLDs)
	assert.NotEmpty(t, rs.SuspiciousKeywords)
	assert.Len(t, rs.KnownBrands, 24)
	assert.NotEmpty(t, rs.HomoglyphMap)

	// Substitution entries are single characters on both sides.
	for sub, canon := range rs.HomoglyphMap {
		assert.Len(t, []rune(sub), 1, "substitute %q", sub)
		assert.Len(t, []rune(canon), 1, "canonical %q", canon)
	}
}

func TestLoadRulesetEmptyPath(t *testing.T) {
	rs, err := LoadRuleset("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRuleset(), rs)
}

func TestLoadRulesetOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ruleset.yaml")

	// Replace one table; the others keep their defaults.
	yaml := `
KnownBrands:
  - acmebank
  - examplecorp
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	rs, err := LoadRuleset(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"acmebank", "examplecorp"}, rs.KnownBrands)
	assert.Equal(t, DefaultRuleset().SuspiciousTLDs, rs.SuspiciousTLDs)
	assert.Equal(t, DefaultRuleset().HomoglyphMap, rs.HomoglyphMap)
}

func TestLoadRulesetMissingFile(t *testing.T) {
	_, err := LoadRuleset("/nonexistent/ruleset.yaml")
	assert.Error(t, err)
}

func TestSettingsDefaults(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("CACHE_TTL", "")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", s.ListenAddr)
	assert.Equal(t, "127.0.0.1:6379", s.RedisAddr)
	assert.Equal(t, "30m0s", s.CacheTTL.String())
}

func TestSettingsEnvOverride(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("CACHE_TTL", "5m")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", s.ListenAddr)
	assert.Equal(t, "5m0s", s.CacheTTL.String())
}

func TestSettingsBadDuration(t *testing.T) {
	t.Setenv("CACHE_TTL", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}
