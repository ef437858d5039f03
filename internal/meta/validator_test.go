package meta

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func validDesc() schema.MetaDescriptor {
	return schema.MetaDescriptor{
		SchemaVersion: schema.SchemaVersion,
		Rows:          100,
		TsEventMin:    1000,
		TsEventMax:    2000,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(validDesc()))

	d := validDesc()
	d.SchemaVersion = 99
	assert.ErrorIs(t, Validate(d), ErrSchemaVersionMismatch)

	d = validDesc()
	d.Rows = -1
	assert.ErrorIs(t, Validate(d), ErrInvalidBounds)

	d = validDesc()
	d.TsEventMin, d.TsEventMax = d.TsEventMax, d.TsEventMin
	assert.ErrorIs(t, Validate(d), ErrInvalidBounds)
}

func TestValidatePostHoc(t *testing.T) {
	d := validDesc()
	require.NoError(t, ValidatePostHoc(d, ScanResult{Rows: 100, TsMin: 1000, TsMax: 2000}))

	err := ValidatePostHoc(d, ScanResult{Rows: 99, TsMin: 1000, TsMax: 2000})
	assert.ErrorIs(t, err, ErrRowCountMismatch)

	err = ValidatePostHoc(d, ScanResult{Rows: 100, TsMin: 900, TsMax: 2000})
	assert.ErrorIs(t, err, ErrBoundsMismatch)

	err = ValidatePostHoc(d, ScanResult{Rows: 100, TsMin: 1000, TsMax: 2001})
	assert.ErrorIs(t, err, ErrBoundsMismatch)

	empty := validDesc()
	empty.Rows = 0
	require.NoError(t, ValidatePostHoc(empty, ScanResult{}))
}

func TestValidateFiltered(t *testing.T) {
	start, end := int64(1100), int64(1900)

	require.NoError(t, ValidateFiltered(ScanResult{Rows: 10, TsMin: 1100, TsMax: 1900}, &start, &end))
	require.NoError(t, ValidateFiltered(ScanResult{}, &start, &end))
	require.NoError(t, ValidateFiltered(ScanResult{Rows: 10, TsMin: 0, TsMax: 1 << 60}, nil, nil))

	err := ValidateFiltered(ScanResult{Rows: 10, TsMin: 1099, TsMax: 1900}, &start, &end)
	assert.ErrorIs(t, err, ErrBoundsMismatch)

	err = ValidateFiltered(ScanResult{Rows: 10, TsMin: 1100, TsMax: 1901}, &start, &end)
	assert.ErrorIs(t, err, ErrBoundsMismatch)
}

func TestCombine(t *testing.T) {
	a := schema.MetaDescriptor{SchemaVersion: schema.SchemaVersion, Rows: 40, TsEventMin: 100, TsEventMax: 500}
	b := schema.MetaDescriptor{SchemaVersion: schema.SchemaVersion, Rows: 60, TsEventMin: 400, TsEventMax: 900}

	combined, err := Combine(a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(100), combined.Rows)
	assert.Equal(t, int64(100), combined.TsEventMin)
	assert.Equal(t, int64(900), combined.TsEventMax)
	assert.Equal(t, 2, combined.SourceFiles)

	_, err = Combine()
	assert.Error(t, err)

	b.SchemaVersion = 2
	_, err = Combine(a, b)
	assert.ErrorIs(t, err, ErrSchemaVersionMismatch)
}

func TestValidateDeclared(t *testing.T) {
	combined := validDesc()
	require.NoError(t, ValidateDeclared(validDesc(), combined))

	declared := validDesc()
	declared.Rows = 101
	assert.ErrorIs(t, ValidateDeclared(declared, combined), ErrRowCountMismatch)

	declared = validDesc()
	declared.TsEventMax = 2001
	assert.ErrorIs(t, ValidateDeclared(declared, combined), ErrBoundsMismatch)

	declared = validDesc()
	declared.SchemaVersion = 2
	assert.ErrorIs(t, ValidateDeclared(declared, combined), ErrSchemaVersionMismatch)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.meta.json")
	want := validDesc()
	want.SourceFiles = 3

	require.NoError(t, WriteFile(path, want))
	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
