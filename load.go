package fieldselector

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// schemaDocument is the YAML representation of a selector schema, as
// written by operators:
//
//	available: [id, name, email, phone]
//	defaults:  [id, name]
//	groups:
//	  basic:   [id, name]
//	  contact: [email, phone]
//	query_param: fields
//	header_name: x-fields
//	separator: ","
//
// The three wire settings are optional and default as documented on the
// corresponding options.
type schemaDocument struct {
	Available  []string            `yaml:"available"`
	Defaults   []string            `yaml:"defaults"`
	Groups     map[string][]string `yaml:"groups"`
	QueryParam string              `yaml:"query_param"`
	HeaderName string              `yaml:"header_name"`
	Separator  string              `yaml:"separator"`
}

// Parse builds a Selector from a YAML schema document. Settings from the
// document are applied first and opts take precedence over them. Schema
// violations surface as *ConfigError, exactly as with New.
func Parse(data []byte, opts ...Option) (*Selector, error) {
	var doc schemaDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}

	all := make([]Option, 0, len(opts)+3)
	all = append(all,
		WithQueryParam(doc.QueryParam),
		WithHeaderName(doc.HeaderName),
		WithSeparator(doc.Separator),
	)
	all = append(all, opts...)

	return New(Schema{
		Available: doc.Available,
		Defaults:  doc.Defaults,
		Groups:    doc.Groups,
	}, all...)
}

// LoadFile reads a YAML schema document from path and builds a Selector
// from it via Parse.
func LoadFile(path string, opts ...Option) (*Selector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data, opts...)
}
