package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"main/internal/aggregate"
	"main/internal/archive"
	"main/internal/canary"
	"main/internal/meta"
	"main/internal/partition"
	"main/internal/replay"
	"main/internal/schema"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Dataset   DatasetConfig   `json:"dataset"`
	Replay    ReplayConfig    `json:"replay"`
	Aggregate AggregateConfig `json:"aggregate"`
	Archive   ArchiveConfig   `json:"archive"`
	Canary    CanaryConfig    `json:"canary"`
}

// DatasetConfig locates the partitions and the optional dataset-level
// descriptor that Validate cross-checks against them.
type DatasetConfig struct {
	MetaPath   string            `json:"metaPath"`
	Partitions []PartitionConfig `json:"partitions"`
}

// PartitionConfig describes one partition entry. Path selects a local
// parquet file; Bucket/Object select a remote object-store partition.
type PartitionConfig struct {
	Path      string `json:"path"`
	MetaPath  string `json:"metaPath"`
	URL       string `json:"url"`
	Bucket    string `json:"bucket"`
	Object    string `json:"object"`
	TimeoutMs int64  `json:"timeoutMs"`
}

// ReplayConfig carries the default replay options.
type ReplayConfig struct {
	BatchSize int    `json:"batchSize"`
	StartTs   *int64 `json:"startTs"`
	EndTs     *int64 `json:"endTs"`
}

// AggregateConfig selects the optional downsampling stage.
type AggregateConfig struct {
	Mode       string `json:"mode"`
	IntervalMs int64  `json:"intervalMs"`
}

// ArchiveConfig enables the audit archive writer.
type ArchiveConfig struct {
	Enabled    bool   `json:"enabled"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	User       string `json:"user"`
	Password   string `json:"password"`
	Database   string `json:"database"`
	SSLMode    string `json:"sslMode"`
	PriceScale int    `json:"priceScale"`
	SizeScale  int    `json:"sizeScale"`
}

// CanaryConfig enables the canary publisher.
type CanaryConfig struct {
	Enabled       bool   `json:"enabled"`
	URL           string `json:"url"`
	SubjectPrefix string `json:"subjectPrefix"`
	PriceScale    int    `json:"priceScale"`
	SizeScale     int    `json:"sizeScale"`
}

// envOverrides are runtime knobs that win over the config file.
type envOverrides struct {
	BatchSize *int   `env:"REPLAY_BATCH_SIZE"`
	StartTs   *int64 `env:"REPLAY_START_TS"`
	EndTs     *int64 `env:"REPLAY_END_TS"`
	NatsURL   string `env:"REPLAY_NATS_URL"`
	PgHost    string `env:"REPLAY_PG_HOST"`
	PgPass    string `env:"REPLAY_PG_PASSWORD"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Declared  *schema.MetaDescriptor
	Sources   []partition.Source
	Options   replay.Options
	Aggregate *aggregate.Config
	Archive   *archive.Config
	Canary    *canary.Config
}

// Load reads a JSON config file, applies environment overrides and
// resolves descriptors and partition sources.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return Loaded{}, err
	}
	applyOverrides(&cfg, overrides)

	return resolve(cfg)
}

func applyOverrides(cfg *FileConfig, o envOverrides) {
	if o.BatchSize != nil {
		cfg.Replay.BatchSize = *o.BatchSize
	}
	if o.StartTs != nil {
		cfg.Replay.StartTs = o.StartTs
	}
	if o.EndTs != nil {
		cfg.Replay.EndTs = o.EndTs
	}
	if o.NatsURL != "" {
		cfg.Canary.URL = o.NatsURL
		for i := range cfg.Dataset.Partitions {
			if cfg.Dataset.Partitions[i].Bucket != "" {
				cfg.Dataset.Partitions[i].URL = o.NatsURL
			}
		}
	}
	if o.PgHost != "" {
		cfg.Archive.Host = o.PgHost
	}
	if o.PgPass != "" {
		cfg.Archive.Password = o.PgPass
	}
}

func resolve(cfg FileConfig) (Loaded, error) {
	if len(cfg.Dataset.Partitions) == 0 {
		return Loaded{}, fmt.Errorf("config has no partitions")
	}

	loaded := Loaded{
		Options: replay.Options{
			BatchSize: cfg.Replay.BatchSize,
			StartTs:   cfg.Replay.StartTs,
			EndTs:     cfg.Replay.EndTs,
		},
	}

	if cfg.Dataset.MetaPath != "" {
		declared, err := meta.LoadFile(cfg.Dataset.MetaPath)
		if err != nil {
			return Loaded{}, err
		}
		loaded.Declared = &declared
	}

	for _, part := range cfg.Dataset.Partitions {
		src, err := buildSource(part)
		if err != nil {
			return Loaded{}, err
		}
		loaded.Sources = append(loaded.Sources, src)
	}

	agg, err := resolveAggregate(cfg.Aggregate)
	if err != nil {
		return Loaded{}, err
	}
	loaded.Aggregate = agg

	if cfg.Archive.Enabled {
		loaded.Archive = &archive.Config{
			Host:       cfg.Archive.Host,
			Port:       cfg.Archive.Port,
			User:       cfg.Archive.User,
			Password:   cfg.Archive.Password,
			Database:   cfg.Archive.Database,
			SSLMode:    cfg.Archive.SSLMode,
			PriceScale: cfg.Archive.PriceScale,
			SizeScale:  cfg.Archive.SizeScale,
		}
	}
	if cfg.Canary.Enabled {
		loaded.Canary = &canary.Config{
			URL:           cfg.Canary.URL,
			SubjectPrefix: cfg.Canary.SubjectPrefix,
			PriceScale:    cfg.Canary.PriceScale,
			SizeScale:     cfg.Canary.SizeScale,
		}
	}
	return loaded, nil
}

func buildSource(part PartitionConfig) (partition.Source, error) {
	if part.MetaPath == "" {
		return nil, fmt.Errorf("partition entry has no metaPath")
	}
	desc, err := meta.LoadFile(part.MetaPath)
	if err != nil {
		return nil, err
	}
	if part.Path != "" {
		return partition.NewFileSource(part.Path, desc), nil
	}
	if part.Bucket != "" {
		return partition.NewObjectSource(partition.ObjectConfig{
			URL:     part.URL,
			Bucket:  part.Bucket,
			Object:  part.Object,
			Timeout: time.Duration(part.TimeoutMs) * time.Millisecond,
		}, desc)
	}
	return nil, fmt.Errorf("partition entry needs either path or bucket/object")
}

func resolveAggregate(cfg AggregateConfig) (*aggregate.Config, error) {
	switch cfg.Mode {
	case "", "null", "passthrough":
		return nil, nil
	case "fixed-interval":
		return &aggregate.Config{
			Mode:       aggregate.ModeFixedInterval,
			IntervalNs: cfg.IntervalMs * int64(time.Millisecond),
		}, nil
	case "filtered":
		return &aggregate.Config{
			Mode: aggregate.ModeFiltered,
			Keep: aggregate.TradesOnly,
		}, nil
	default:
		return nil, fmt.Errorf("unknown aggregate mode: %s", cfg.Mode)
	}
}
