// Package source reads entry records from YAML, TOML and Markdown files.
//
// Sources sit outside the pipeline: they turn files into raw records and
// report I/O and decode problems as source errors. Whether a record is a
// valid entry is decided later by the schema validator.
package source
