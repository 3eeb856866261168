package source

import (
	"errors"
	"strings"

	"git.home.luguber.info/inful/notebinder/internal/frontmatter"
)

// ErrNoFrontMatter reports a Markdown source without a leading "---" block.
var ErrNoFrontMatter = errors.New("markdown source has no front matter")

// decodeMarkdown turns one file into one record: front matter supplies the
// fields and the remaining text becomes the body unless one is set already.
func decodeMarkdown(data []byte, opts Options) ([]map[string]any, error) {
	fm, body, had, err := frontmatter.Split(data)
	if err != nil {
		return nil, err
	}
	if !had {
		return nil, ErrNoFrontMatter
	}
	fields, err := frontmatter.ParseYAML(fm)
	if err != nil {
		return nil, err
	}

	if opts.StripFrontMatter {
		body = frontmatter.StripAll(body)
	}
	if _, ok := fields["body"]; !ok {
		if text := strings.TrimSpace(string(body)); text != "" {
			fields["body"] = text
		}
	}
	return []map[string]any{fields}, nil
}
