package source

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
	"git.home.luguber.info/inful/notebinder/internal/logfields"
)

// Format is a supported source file type.
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatMarkdown Format = "markdown"
)

var extensions = map[string]Format{
	".yaml":     FormatYAML,
	".yml":      FormatYAML,
	".toml":     FormatTOML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
}

// Options configures decoding.
type Options struct {
	// StripFrontMatter removes every further "---" delimited block from
	// Markdown bodies after the leading front matter has been read.
	StripFrontMatter bool
}

// DetectFormat maps a file name onto its Format.
func DetectFormat(path string) (Format, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Expand replaces directories in paths by the supported files below them,
// in lexical order. Hidden files and directories are skipped. Explicit file
// paths are kept as given, in argument order.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, sourceErr(err, "cannot access source", p)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != p && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := DetectFormat(path); ok {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, sourceErr(err, "failed to walk source directory", p)
		}
		slices.Sort(found)
		out = append(out, found...)
	}
	return out, nil
}

// Load reads every record from paths. Records are numbered from zero across
// all files in path order; Source is "<path>#<n>" with n counting from one
// within the file.
func Load(paths []string, opts Options) ([]entry.Record, error) {
	files, err := Expand(paths)
	if err != nil {
		return nil, err
	}

	var records []entry.Record
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, sourceErr(err, "failed to read source", path)
		}
		fields, err := Decode(path, data, opts)
		if err != nil {
			return nil, err
		}
		for i, f := range fields {
			records = append(records, entry.Record{
				Index:  len(records),
				Source: fmt.Sprintf("%s#%d", path, i+1),
				Fields: f,
			})
		}
		slog.Debug("Loaded source", logfields.Path(path), logfields.Entries(len(fields)))
	}
	return records, nil
}

// Decode parses one file's content into record field maps.
func Decode(path string, data []byte, opts Options) ([]map[string]any, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, derrors.SourceError(fmt.Sprintf("unsupported source type %q", filepath.Ext(path))).
			WithContext("path", path).Build()
	}

	var (
		fields []map[string]any
		err    error
	)
	switch format {
	case FormatYAML:
		fields, err = decodeYAML(data)
	case FormatTOML:
		fields, err = decodeTOML(data)
	case FormatMarkdown:
		fields, err = decodeMarkdown(data, opts)
	}
	if err != nil {
		return nil, sourceErr(err, fmt.Sprintf("failed to decode %s source", format), path)
	}
	return fields, nil
}

// ErrNotRecord reports a document element that is not a mapping.
var ErrNotRecord = errors.New("entry is not a mapping")

// records interprets one decoded document: a list of mappings, a mapping
// with an "entries" list, or a single record mapping.
func records(doc any) ([]map[string]any, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %d: %w (got %T)", i, ErrNotRecord, item)
			}
			out = append(out, m)
		}
		return out, nil
	case map[string]any:
		if list, ok := v["entries"]; ok && len(v) == 1 {
			return records(list)
		}
		if _, ok := v["entries"]; ok {
			return nil, errors.New(`"entries" must be the only top-level key`)
		}
		return []map[string]any{v}, nil
	default:
		return nil, fmt.Errorf("%w (got %T)", ErrNotRecord, doc)
	}
}

func sourceErr(err error, msg, path string) error {
	return derrors.WrapError(err, derrors.CategorySource, msg).WithContext("path", path).Build()
}
