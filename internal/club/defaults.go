package club

import (
	"embed"
	"fmt"

	json "github.com/goccy/go-json"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

// Defaults decodes the dataset bundled with the binary for a collection. It is
// the fallback when no saved snapshot exists.
func Defaults[T Record[T]](resource Resource) ([]T, error) {
	data, err := defaultsFS.ReadFile("defaults/" + string(resource) + ".json")
	if err != nil {
		return nil, fmt.Errorf("read defaults for %s: %w", resource, err)
	}
	return DecodeList[T](data)
}

// DecodeList parses a JSON array of records and validates every element.
func DecodeList[T Record[T]](data []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
