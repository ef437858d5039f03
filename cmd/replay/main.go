package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"main/internal/aggregate"
	"main/internal/archive"
	"main/internal/canary"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/replay"
	"main/internal/schema"
)

func main() {
	cfgPath := flag.String("config", "config.json", "Config file path")
	limit := flag.Int64("limit", 0, "Stop after N rows (0 = full stream)")
	profile := flag.String("profile", "", "Pyroscope server address (empty = disabled)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *profile != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "replay",
			ServerAddress:   *profile,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
			},
		})
		if err != nil {
			logs.Errorf("pyroscope start failed, err: %+v", err)
			os.Exit(1)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	if err := run(ctx, *cfgPath, *limit); err != nil {
		logs.Errorf("replay failed, err: %+v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string, limit int64) error {
	loaded, err := ops.Load(cfgPath)
	if err != nil {
		return err
	}

	metrics := obs.NewMetrics()
	session, err := replay.NewSession(loaded.Sources...)
	if err != nil {
		return err
	}
	session = session.WithMetrics(metrics)
	if loaded.Declared != nil {
		session = session.WithDeclared(*loaded.Declared)
	}
	defer session.Close()

	desc, err := session.Validate()
	if err != nil {
		return err
	}
	logs.Infof("dataset validated: rows=%d ts=[%d, %d] files=%d",
		desc.Rows, desc.TsEventMin, desc.TsEventMax, desc.SourceFiles)

	runID := obs.NewRunIDGenerator(0).Next()

	var agg *aggregate.Aggregator
	if loaded.Aggregate != nil {
		agg, err = aggregate.New(*loaded.Aggregate)
		if err != nil {
			return err
		}
	}
	var arch *archive.Writer
	if loaded.Archive != nil {
		arch, err = archive.NewWriter(*loaded.Archive, runID)
		if err != nil {
			return err
		}
		defer arch.Close()
	}
	var pub *canary.Publisher
	if loaded.Canary != nil {
		pub, err = canary.NewPublisher(*loaded.Canary, runID)
		if err != nil {
			return err
		}
		defer pub.Close()
	}

	stream, err := session.Replay(ctx, loaded.Options)
	if err != nil {
		return err
	}
	defer stream.Close()

	started := time.Now()
	var delivered int64
	for {
		batch, err := stream.NextBatch()
		if err != nil {
			return err
		}
		if batch == nil {
			break
		}
		for _, row := range batch {
			out := []schema.EventRow{row}
			if agg != nil {
				out = agg.Push(row)
			}
			for _, r := range out {
				if err := deliver(arch, pub, r); err != nil {
					return err
				}
				delivered++
			}
		}
		if limit > 0 && stream.Emitted() >= limit {
			logs.Infof("row limit reached, stopping early: emitted=%d", stream.Emitted())
			break
		}
	}
	if agg != nil {
		for _, r := range agg.Flush() {
			if err := deliver(arch, pub, r); err != nil {
				return err
			}
			delivered++
		}
	}
	if arch != nil {
		if err := arch.Finish(stream.Hash()); err != nil {
			return err
		}
	}
	if pub != nil {
		if err := pub.PublishSummary(stream.Hash()); err != nil {
			return err
		}
	}

	snap := metrics.Snapshot()
	logs.Infof("replay done: run=%s emitted=%d delivered=%d hash=%08x elapsed=%s scans=%d batches=%d",
		runID, stream.Emitted(), delivered, stream.Hash(), time.Since(started),
		snap.SourceScans, snap.BatchesEmitted)
	return nil
}

func deliver(arch *archive.Writer, pub *canary.Publisher, row schema.EventRow) error {
	if arch != nil {
		if err := arch.Append(row); err != nil {
			return err
		}
	}
	if pub != nil {
		if err := pub.PublishRow(row); err != nil {
			return err
		}
	}
	return nil
}
