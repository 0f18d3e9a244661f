package settings

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Codec converts the wire view of an EnumValues document to and from bytes.
// Each Mapper kind supplies its own, since the value type is not known to
// the generic container.
type Codec[T any] interface {
	Marshal(entries map[string]T) ([]byte, error)
	Unmarshal(data []byte) (map[string]T, error)
}

// YAMLCodec stores values as they marshal natively through yaml.v3.
// JSON documents are valid input as well.
type YAMLCodec[T any] struct{}

// Marshal implements Codec.
func (YAMLCodec[T]) Marshal(entries map[string]T) ([]byte, error) {
	return yaml.Marshal(entries)
}

// Unmarshal implements Codec.
func (YAMLCodec[T]) Unmarshal(data []byte) (map[string]T, error) {
	entries := make(map[string]T)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// TextCodec stores each value as a YAML string using Format and Parse.
type TextCodec[T any] struct {
	Format func(T) string
	Parse  func(string) (T, error)
}

// Marshal implements Codec.
func (c TextCodec[T]) Marshal(entries map[string]T) ([]byte, error) {
	doc := make(map[string]string, len(entries))
	for name, v := range entries {
		doc[name] = c.Format(v)
	}
	return yaml.Marshal(doc)
}

// Unmarshal implements Codec. A value that fails to parse fails the document.
func (c TextCodec[T]) Unmarshal(data []byte) (map[string]T, error) {
	doc := make(map[string]string)
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	entries := make(map[string]T, len(doc))
	for name, s := range doc {
		v, err := c.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		entries[name] = v
	}
	return entries, nil
}
