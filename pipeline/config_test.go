package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/substrate"
)

func TestDefaultPolicyPerStage(t *testing.T) {
	ade := DefaultPolicy(core.StageADEProcessing)
	assert.Equal(t, 3, ade.Retries)
	assert.False(t, ade.RateLimit.Unlimited())

	chunking := DefaultPolicy(core.StageChunking)
	assert.Equal(t, 2, chunking.Retries)
	assert.True(t, chunking.RateLimit.Unlimited())
}

func TestParseConfigOverrides(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
stages:
  embedding:
    retries: 5
    concurrency: 8
    timeout: 90s
    base_delay: 500ms
    rate_limit:
      limit: 60
      period: 1m
`))
	require.NoError(t, err)

	policy, err := cfg.PolicyFor(core.StageEmbedding)
	require.NoError(t, err)
	assert.Equal(t, 5, policy.Retries)
	assert.Equal(t, 8, policy.Concurrency)
	assert.Equal(t, 90*time.Second, policy.Timeout)
	assert.Equal(t, 500*time.Millisecond, policy.BaseDelay)
	assert.Equal(t, substrate.RateLimit{Limit: 60, Period: time.Minute}, policy.RateLimit)
}

func TestPolicyForUnconfiguredStageUsesDefault(t *testing.T) {
	cfg, err := ParseConfig([]byte("stages: {}"))
	require.NoError(t, err)

	policy, err := cfg.PolicyFor(core.StageIndexing)
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(core.StageIndexing).Retries, policy.Retries)
}

func TestPolicyForPartialOverrideKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
stages:
  ade_processing:
    retries: 10
`))
	require.NoError(t, err)

	policy, err := cfg.PolicyFor(core.StageADEProcessing)
	require.NoError(t, err)
	assert.Equal(t, 10, policy.Retries)
	// Unset fields keep the stage default.
	assert.Equal(t, 5*time.Minute, policy.Timeout)
	assert.Equal(t, 30, policy.RateLimit.Limit)
}

func TestPolicyForRejectsBadDuration(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
stages:
  chunking:
    timeout: sixty seconds
`))
	require.NoError(t, err)

	_, err = cfg.PolicyFor(core.StageChunking)
	assert.Error(t, err)
}

func TestPolicyForRejectsExcessiveRetries(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
stages:
  chunking:
    retries: 50
`))
	require.NoError(t, err)

	_, err = cfg.PolicyFor(core.StageChunking)
	assert.ErrorIs(t, err, substrate.ErrInvalidPolicy)
}

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	policy, err := cfg.PolicyFor(core.StageChunking)
	require.NoError(t, err)
	assert.Equal(t, 2, policy.Retries)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stages:
  indexing:
    retries: 1
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	policy, err := cfg.PolicyFor(core.StageIndexing)
	require.NoError(t, err)
	assert.Equal(t, 1, policy.Retries)
}
