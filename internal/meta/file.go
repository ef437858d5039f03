package meta

import (
	"encoding/json"
	"os"

	"main/internal/errors"
	"main/internal/schema"
)

// LoadFile reads a JSON meta descriptor from disk.
// The layout mirrors what the compaction pipeline writes next to each
// partition: {schema_version, rows, ts_event_min, ts_event_max, source_files?}.
func LoadFile(path string) (schema.MetaDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.MetaDescriptor{}, errors.Wrap(err, "read meta descriptor")
	}
	var d schema.MetaDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return schema.MetaDescriptor{}, errors.Wrap(err, "decode meta descriptor")
	}
	return d, nil
}

// WriteFile writes a descriptor as indented JSON, used by dataset tooling.
func WriteFile(path string, d schema.MetaDescriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode meta descriptor")
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
