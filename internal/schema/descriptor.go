package schema

// MetaDescriptor is the immutable declared shape of a dataset partition:
// schema version, row count and inclusive time bounds. It is the contract
// boundary with the ingestion/compaction pipeline that produced the
// partition files.
type MetaDescriptor struct {
	SchemaVersion int   `json:"schema_version"`
	Rows          int64 `json:"rows"`
	TsEventMin    int64 `json:"ts_event_min"`
	TsEventMax    int64 `json:"ts_event_max"`
	SourceFiles   int   `json:"source_files,omitempty"`
}
