package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyRecord     = "record"
	KeyEntryID    = "entry_id"
	KeyCategory   = "category"
	KeySection    = "section"
	KeySource     = "source"
	KeyPath       = "path"
	KeyBytes      = "bytes"
	KeyEntries    = "entries"
	KeyViolations = "violations"
	KeyTrigger    = "trigger"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Record(ref string) slog.Attr     { return slog.String(KeyRecord, ref) }
func EntryID(id string) slog.Attr     { return slog.String(KeyEntryID, id) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func Entries(n int) slog.Attr         { return slog.Int(KeyEntries, n) }
func Violations(n int) slog.Attr      { return slog.Int(KeyViolations, n) }
func Trigger(t string) slog.Attr      { return slog.String(KeyTrigger, t) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
