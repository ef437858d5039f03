package partition

import (
	"os"

	"github.com/parquet-go/parquet-go"

	"main/internal/errors"
	"main/internal/schema"
)

// WriteFile writes rows into a parquet partition file in the given
// order. Used by dataset tooling and tests; the replay engine itself
// never assumes files were written sorted.
func WriteFile(path string, rows []schema.EventRow) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create partition file")
	}
	writer := parquet.NewGenericWriter[schema.EventRow](file)
	if _, err := writer.Write(rows); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "write partition rows")
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "close partition writer")
	}
	return file.Close()
}
