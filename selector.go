package fieldselector

import (
	"fmt"
	"net/textproto"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// GroupPrefix marks a selection token as a group reference rather than a
// literal field name.
const GroupPrefix = "@"

// Schema declares the field universe a Selector resolves against: the
// available fields, the defaults used when a request carries no usable
// selection, and named groups that expand to field bundles.
type Schema struct {
	Available []string            // complete universe of selectable fields, non-empty
	Defaults  []string            // fields used absent a valid selection, non-empty subset of Available
	Groups    map[string][]string // named field bundles, each a subset of Available
}

// Selector resolves client-supplied selection strings against a validated
// Schema. It is immutable after New and safe for unsynchronized concurrent
// use across request handlers.
type Selector struct {
	available map[string]bool
	groups    map[string][]string
	defaults  Selection

	availableOrder []string // field names in originally supplied order
	defaultOrder   []string // default names in originally supplied order

	queryParam string
	headerName string // canonical header form
	separator  string

	logger  *zap.Logger
	metrics *Metrics
}

// New validates schema and builds a Selector. Validation is fail-fast in a
// fixed order: available fields, default fields, then groups; the first
// violation is returned as a *ConfigError and later checks do not run.
// Group names are checked in sorted order so the reported group is
// deterministic when several are invalid.
func New(schema Schema, opts ...Option) (*Selector, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(schema.Available) == 0 {
		return nil, &ConfigError{Message: "availableFields must be provided and non-empty"}
	}
	if len(schema.Defaults) == 0 {
		return nil, &ConfigError{Message: "defaultFields must be provided and non-empty"}
	}

	available := make(map[string]bool, len(schema.Available))
	for _, f := range schema.Available {
		available[f] = true
	}

	for _, f := range schema.Defaults {
		if !available[f] {
			return nil, &ConfigError{
				Message: "default fields contain values not present in available fields",
				Details: map[string]any{"field": f},
			}
		}
	}

	groupNames := make([]string, 0, len(schema.Groups))
	for name := range schema.Groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	groups := make(map[string][]string, len(schema.Groups))
	for _, name := range groupNames {
		fields := schema.Groups[name]
		for _, f := range fields {
			if !available[f] {
				fieldList := make([]string, len(fields))
				copy(fieldList, fields)
				return nil, &ConfigError{
					Message: fmt.Sprintf("group %q contains fields not present in available fields: %s",
						name, strings.Join(fields, ", ")),
					Details: map[string]any{"group": name, "fields": fieldList},
				}
			}
		}
		cp := make([]string, len(fields))
		copy(cp, fields)
		groups[name] = cp
	}

	availableOrder := make([]string, len(schema.Available))
	copy(availableOrder, schema.Available)
	defaultOrder := make([]string, len(schema.Defaults))
	copy(defaultOrder, schema.Defaults)

	return &Selector{
		available:      available,
		groups:         groups,
		defaults:       NewSelection(schema.Defaults...),
		availableOrder: availableOrder,
		defaultOrder:   defaultOrder,
		queryParam:     cfg.queryParam,
		headerName:     textproto.CanonicalMIMEHeaderKey(cfg.headerName),
		separator:      cfg.separator,
		logger:         cfg.logger,
		metrics:        cfg.metrics,
	}, nil
}

// Select extracts the raw selection string from req and resolves it against
// the schema. The query parameter is consulted first, then the header; when
// neither carries a value the default fields are returned without parsing.
func (s *Selector) Select(req Request) Selection {
	raw, source := s.rawSelection(req)
	s.metrics.recordSelection(source)
	if source == SourceDefault {
		s.logger.Debug("no selection supplied, using default fields")
		return s.defaults
	}
	return s.Resolve(raw)
}

// Resolve parses a raw selection string into a Selection. The string is
// split on the configured separator and each token is trimmed; a token
// carrying the group prefix expands to its group's fields in place. Unknown
// fields and unknown groups are discarded without error, since a selection
// is an advisory client hint rather than a strict contract. When nothing
// valid remains, the default fields are returned.
//
// The result only ever contains fields from the schema's available set, or
// is exactly the default set.
func (s *Selector) Resolve(raw string) Selection {
	seen := make(map[string]bool)
	var ordered []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			ordered = append(ordered, name)
		}
	}

	for _, token := range strings.Split(raw, s.separator) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.HasPrefix(token, GroupPrefix) {
			name := strings.TrimPrefix(token, GroupPrefix)
			fields, ok := s.groups[name]
			if !ok {
				s.logger.Debug("discarding unknown group", zap.String("group", name))
				s.metrics.recordDiscard(DiscardUnknownGroup)
				continue
			}
			for _, f := range fields {
				add(f)
			}
			continue
		}

		if !s.available[token] {
			s.logger.Debug("discarding unknown field", zap.String("field", token))
			s.metrics.recordDiscard(DiscardUnknownField)
			continue
		}
		add(token)
	}

	if len(ordered) == 0 {
		s.logger.Debug("selection resolved to nothing, using default fields", zap.String("raw", raw))
		s.metrics.recordFallback()
		return s.defaults
	}
	return Selection{ordered: ordered, members: seen}
}

// AvailableFields returns the available fields exactly as supplied to New,
// in their original order. The returned slice is a copy.
func (s *Selector) AvailableFields() []string {
	out := make([]string, len(s.availableOrder))
	copy(out, s.availableOrder)
	return out
}

// DefaultFields returns the default fields exactly as supplied to New, in
// their original order. The returned slice is a copy.
func (s *Selector) DefaultFields() []string {
	out := make([]string, len(s.defaultOrder))
	copy(out, s.defaultOrder)
	return out
}

// QueryParam returns the query parameter the selector reads selections from.
func (s *Selector) QueryParam() string {
	return s.queryParam
}

// HeaderName returns the selection header in its canonical form.
func (s *Selector) HeaderName() string {
	return s.headerName
}

// Separator returns the token separator used when parsing selections.
func (s *Selector) Separator() string {
	return s.separator
}
