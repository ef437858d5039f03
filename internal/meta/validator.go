package meta

import (
	"errors"
	"fmt"

	"main/internal/schema"
)

var (
	ErrSchemaVersionMismatch = errors.New("meta schema version mismatch")
	ErrInvalidBounds         = errors.New("meta time bounds invalid")
	ErrRowCountMismatch      = errors.New("meta row count mismatch")
	ErrBoundsMismatch        = errors.New("meta time bounds mismatch")
)

// Validate runs the pre-flight consistency check on a descriptor.
// A schema version other than schema.SchemaVersion is a hard failure;
// evolution must be explicit, never silently tolerated.
func Validate(d schema.MetaDescriptor) error {
	if d.SchemaVersion != schema.SchemaVersion {
		return fmt.Errorf("%w: got %d, engine supports %d",
			ErrSchemaVersionMismatch, d.SchemaVersion, schema.SchemaVersion)
	}
	if d.Rows < 0 {
		return fmt.Errorf("%w: rows %d must be >= 0", ErrInvalidBounds, d.Rows)
	}
	if d.TsEventMin > d.TsEventMax {
		return fmt.Errorf("%w: ts_event_min %d > ts_event_max %d",
			ErrInvalidBounds, d.TsEventMin, d.TsEventMax)
	}
	return nil
}

// ScanResult captures what a completed replay actually produced.
type ScanResult struct {
	Rows  int64
	TsMin int64
	TsMax int64
}

// ValidatePostHoc checks an unfiltered scan against the declared
// descriptor: the emitted row count must equal d.Rows exactly, and the
// emitted time bounds must fall inside the declared bounds.
func ValidatePostHoc(d schema.MetaDescriptor, res ScanResult) error {
	if res.Rows != d.Rows {
		return fmt.Errorf("%w: declared %d rows, emitted %d",
			ErrRowCountMismatch, d.Rows, res.Rows)
	}
	if res.Rows == 0 {
		return nil
	}
	if res.TsMin < d.TsEventMin || res.TsMax > d.TsEventMax {
		return fmt.Errorf("%w: emitted [%d, %d] outside declared [%d, %d]",
			ErrBoundsMismatch, res.TsMin, res.TsMax, d.TsEventMin, d.TsEventMax)
	}
	return nil
}

// ValidateFiltered checks a time-filtered scan: the row count check is
// skipped (the filter legitimately excludes rows) but every emitted
// timestamp must fall inside the inclusive [startTs, endTs] window.
// A nil bound means that side of the window is open.
func ValidateFiltered(res ScanResult, startTs, endTs *int64) error {
	if res.Rows == 0 {
		return nil
	}
	if startTs != nil && res.TsMin < *startTs {
		return fmt.Errorf("%w: emitted ts %d before filter start %d",
			ErrBoundsMismatch, res.TsMin, *startTs)
	}
	if endTs != nil && res.TsMax > *endTs {
		return fmt.Errorf("%w: emitted ts %d after filter end %d",
			ErrBoundsMismatch, res.TsMax, *endTs)
	}
	return nil
}

// Combine folds per-partition descriptors into one logical descriptor:
// row counts are summed, time bounds unioned, source files counted.
// Partitions may overlap in time; the merge stage restores total order.
func Combine(descs ...schema.MetaDescriptor) (schema.MetaDescriptor, error) {
	if len(descs) == 0 {
		return schema.MetaDescriptor{}, fmt.Errorf("%w: no descriptors to combine", ErrInvalidBounds)
	}
	combined := schema.MetaDescriptor{
		SchemaVersion: descs[0].SchemaVersion,
		TsEventMin:    descs[0].TsEventMin,
		TsEventMax:    descs[0].TsEventMax,
	}
	for _, d := range descs {
		if d.SchemaVersion != combined.SchemaVersion {
			return schema.MetaDescriptor{}, fmt.Errorf(
				"%w: partitions declare versions %d and %d",
				ErrSchemaVersionMismatch, combined.SchemaVersion, d.SchemaVersion)
		}
		combined.Rows += d.Rows
		if d.TsEventMin < combined.TsEventMin {
			combined.TsEventMin = d.TsEventMin
		}
		if d.TsEventMax > combined.TsEventMax {
			combined.TsEventMax = d.TsEventMax
		}
		files := d.SourceFiles
		if files == 0 {
			files = 1
		}
		combined.SourceFiles += files
	}
	return combined, nil
}

// ValidateDeclared cross-checks a dataset-level descriptor against the
// combination of its partitions' descriptors. A wrong declared row count
// or bounds fails here, before any row is scanned.
func ValidateDeclared(declared, combined schema.MetaDescriptor) error {
	if declared.SchemaVersion != combined.SchemaVersion {
		return fmt.Errorf("%w: dataset declares %d, partitions declare %d",
			ErrSchemaVersionMismatch, declared.SchemaVersion, combined.SchemaVersion)
	}
	if declared.Rows != combined.Rows {
		return fmt.Errorf("%w: dataset declares %d rows, partitions declare %d",
			ErrRowCountMismatch, declared.Rows, combined.Rows)
	}
	if declared.TsEventMin != combined.TsEventMin || declared.TsEventMax != combined.TsEventMax {
		return fmt.Errorf("%w: dataset declares [%d, %d], partitions declare [%d, %d]",
			ErrBoundsMismatch, declared.TsEventMin, declared.TsEventMax,
			combined.TsEventMin, combined.TsEventMax)
	}
	return nil
}
