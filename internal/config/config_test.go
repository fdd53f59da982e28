package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("LIVE_AGENT", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.False(t, cfg.LiveAgent)
	assert.Equal(t, domain.ModeDummy, cfg.Mode())
	assert.Equal(t, "gpt-5", cfg.OpenAIModel)
}

func TestLiveAgentTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", " Yes "} {
		t.Setenv("LIVE_AGENT", v)
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg, err := FromEnv()
		require.NoError(t, err, v)
		assert.True(t, cfg.LiveAgent, v)
		assert.Equal(t, domain.ModeLive, cfg.Mode())
	}

	for _, v := range []string{"", "0", "false", "no", "off"} {
		t.Setenv("LIVE_AGENT", v)

		cfg, err := FromEnv()
		require.NoError(t, err, v)
		assert.False(t, cfg.LiveAgent, v)
	}
}

func TestLiveAgentWithoutKeyFails(t *testing.T) {
	t.Setenv("LIVE_AGENT", "true")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestCatalogDefault(t *testing.T) {
	cfg := Config{}
	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Len(t, catalog, 8)
}

func TestCatalogOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	rules := `
- id: TST-001
  title: Test Rule
  tag: Fraud
  severity: high
  tool: je_same_user_post_approve
`
	require.NoError(t, os.WriteFile(path, []byte(rules), 0o644))

	catalog, err := Config{RulesPath: path}.Catalog()
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "TST-001", catalog[0].ID)
	assert.Equal(t, domain.ToolSameUserPostApprove, catalog[0].Tool)
}

func TestCatalogOverrideEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	_, err := Config{RulesPath: path}.Catalog()
	require.Error(t, err)
}
