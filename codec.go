package narrative

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeDomainJSON reads a domain from its JSON representation. Unknown
// fields are rejected.
func DecodeDomainJSON(r io.Reader) (*Domain, error) {
	d := &Domain{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(d); err != nil {
		return nil, fmt.Errorf("narrative: decode json: %w", err)
	}
	return d, nil
}

// DecodeDomainYAML reads a domain from YAML using the same field names as
// the JSON representation. Unknown fields are rejected.
func DecodeDomainYAML(r io.Reader) (*Domain, error) {
	d := &Domain{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(d); err != nil {
		return nil, fmt.Errorf("narrative: decode yaml: %w", err)
	}
	return d, nil
}

// EncodeDomainJSON writes d as indented JSON.
func EncodeDomainJSON(w io.Writer, d *Domain) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("narrative: encode json: %w", err)
	}
	return nil
}
