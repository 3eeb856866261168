package source

import (
	"github.com/pelletier/go-toml/v2"
)

// decodeTOML reads [[entries]] tables.
func decodeTOML(data []byte) ([]map[string]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, nil
	}
	return records(doc)
}
