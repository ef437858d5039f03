package ops

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/aggregate"
	"main/internal/meta"
	"main/internal/schema"
)

func writeConfig(t *testing.T, cfg FileConfig) string {
	t.Helper()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeMeta(t *testing.T, dir, name string, d schema.MetaDescriptor) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, meta.WriteFile(path, d))
	return path
}

func testConfig(t *testing.T) FileConfig {
	dir := t.TempDir()
	desc := schema.MetaDescriptor{
		SchemaVersion: schema.SchemaVersion,
		Rows:          100,
		TsEventMin:    1000,
		TsEventMax:    2000,
		SourceFiles:   1,
	}
	return FileConfig{
		Dataset: DatasetConfig{
			MetaPath: writeMeta(t, dir, "dataset.meta.json", desc),
			Partitions: []PartitionConfig{{
				Path:     filepath.Join(dir, "part-000.parquet"),
				MetaPath: writeMeta(t, dir, "part-000.meta.json", desc),
			}},
		},
		Replay: ReplayConfig{BatchSize: 500},
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, testConfig(t))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Sources, 1)
	require.NotNil(t, loaded.Declared)
	assert.Equal(t, int64(100), loaded.Declared.Rows)
	assert.Equal(t, 500, loaded.Options.BatchSize)
	assert.Nil(t, loaded.Aggregate)
	assert.Nil(t, loaded.Archive)
	assert.Nil(t, loaded.Canary)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, testConfig(t))

	t.Setenv("REPLAY_BATCH_SIZE", "64")
	t.Setenv("REPLAY_START_TS", "1500")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, loaded.Options.BatchSize)
	require.NotNil(t, loaded.Options.StartTs)
	assert.Equal(t, int64(1500), *loaded.Options.StartTs)
	assert.Nil(t, loaded.Options.EndTs)
}

func TestLoadAggregateModes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Aggregate = AggregateConfig{Mode: "fixed-interval", IntervalMs: 100}
	loaded, err := Load(writeConfig(t, cfg))
	require.NoError(t, err)
	require.NotNil(t, loaded.Aggregate)
	assert.Equal(t, aggregate.ModeFixedInterval, loaded.Aggregate.Mode)
	assert.Equal(t, int64(100_000_000), loaded.Aggregate.IntervalNs)

	cfg.Aggregate = AggregateConfig{Mode: "filtered"}
	loaded, err = Load(writeConfig(t, cfg))
	require.NoError(t, err)
	require.NotNil(t, loaded.Aggregate)
	assert.Equal(t, aggregate.ModeFiltered, loaded.Aggregate.Mode)

	cfg.Aggregate = AggregateConfig{Mode: "bogus"}
	_, err = Load(writeConfig(t, cfg))
	assert.Error(t, err)
}

func TestLoadRejectsBrokenConfigs(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Dataset.Partitions = nil
	_, err = Load(writeConfig(t, cfg))
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Dataset.Partitions[0].MetaPath = ""
	_, err = Load(writeConfig(t, cfg))
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Dataset.Partitions[0].Path = ""
	_, err = Load(writeConfig(t, cfg))
	assert.Error(t, err)
}

func TestLoadEnabledSinks(t *testing.T) {
	cfg := testConfig(t)
	cfg.Archive = ArchiveConfig{Enabled: true, Host: "db.local", Database: "replay", PriceScale: 4}
	cfg.Canary = CanaryConfig{Enabled: true, URL: "nats://broker:4222"}

	loaded, err := Load(writeConfig(t, cfg))
	require.NoError(t, err)
	require.NotNil(t, loaded.Archive)
	assert.Equal(t, "db.local", loaded.Archive.Host)
	assert.Equal(t, 4, loaded.Archive.PriceScale)
	require.NotNil(t, loaded.Canary)
	assert.Equal(t, "nats://broker:4222", loaded.Canary.URL)
}
