package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"main/internal/meta"
	"main/internal/partition"
	"main/internal/schema"
	"main/internal/synth"
)

func main() {
	dir := flag.String("dir", "testdata/parts", "Output directory")
	rows := flag.Int("rows", 15000, "Total row count")
	parts := flag.Int("parts", 3, "Partition count")
	symbols := flag.String("symbols", "BTCUSDT,ETHUSDT,SOLUSDT", "Comma separated symbols")
	start := flag.Int64("start", 1_700_000_000_000_000_000, "First ts_event (ns)")
	step := flag.Int64("step", 1_000_000, "Timestamp advance per tick (ns)")
	flag.Parse()

	if err := run(*dir, *rows, *parts, strings.Split(*symbols, ","), *start, *step); err != nil {
		log.Fatalf("mkparts failed: %v", err)
	}
}

func run(dir string, rows, parts int, symbols []string, start, step int64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	gen, err := synth.NewGenerator(synth.Config{
		Symbols: symbols,
		StartTs: start,
		StepNs:  step,
	})
	if err != nil {
		return err
	}

	all := gen.Take(rows)
	chunks := synth.Split(all, parts)
	descs := make([]schema.MetaDescriptor, 0, len(chunks))
	for i, chunk := range chunks {
		name := fmt.Sprintf("part-%03d", i)
		if err := partition.WriteFile(filepath.Join(dir, name+".parquet"), chunk); err != nil {
			return err
		}
		desc := synth.Describe(chunk)
		if err := meta.WriteFile(filepath.Join(dir, name+".meta.json"), desc); err != nil {
			return err
		}
		descs = append(descs, desc)
	}

	combined, err := meta.Combine(descs...)
	if err != nil {
		return err
	}
	if err := meta.WriteFile(filepath.Join(dir, "dataset.meta.json"), combined); err != nil {
		return err
	}

	fmt.Printf("wrote %d rows across %d partitions to %s\n", len(all), len(chunks), dir)
	return nil
}
