package restmapper

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// FieldMap holds the constructor arguments a parser extracts from a JSON value.
type FieldMap map[string]any

// Parser turns one decoded JSON value into a typed model in two steps:
// Parse extracts the fields, Construct builds the value from them.
type Parser interface {
	Parse(value any) (FieldMap, error)
	Construct(fields FieldMap) (any, error)
}

// ParserFuncs adapts a pair of functions to the Parser interface.
type ParserFuncs struct {
	ParseFunc     func(value any) (FieldMap, error)
	ConstructFunc func(fields FieldMap) (any, error)
}

// Parse implements Parser. A nil ParseFunc treats the value as the field map.
func (p ParserFuncs) Parse(value any) (FieldMap, error) {
	if p.ParseFunc == nil {
		return objectFields(value)
	}
	return p.ParseFunc(value)
}

// Construct implements Parser. A nil ConstructFunc returns the field map.
func (p ParserFuncs) Construct(fields FieldMap) (any, error) {
	if p.ConstructFunc == nil {
		return fields, nil
	}
	return p.ConstructFunc(fields)
}

// StructParser builds T from the field map using its json tags. parse may
// be nil, in which case the JSON object itself is the field map.
func StructParser[T any](parse func(value any) (FieldMap, error)) Parser {
	return ParserFuncs{
		ParseFunc: parse,
		ConstructFunc: func(fields FieldMap) (any, error) {
			var out T
			dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				Result:           &out,
				TagName:          "json",
				WeaklyTypedInput: true,
			})
			if err != nil {
				return nil, err
			}
			if err := dec.Decode(map[string]any(fields)); err != nil {
				return nil, fmt.Errorf("construct %T: %w", out, err)
			}
			return out, nil
		},
	}
}

func objectFields(value any) (FieldMap, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %T", value)
	}
	return FieldMap(obj), nil
}

type parserEntry struct {
	segment string
	parser  Parser
}

// Parsers maps path segments to parsers. Registration order is kept: when a
// chain contains several registered segments, the one registered last wins.
type Parsers struct {
	mu      sync.RWMutex
	entries []parserEntry
}

// NewParsers returns an empty registry.
func NewParsers() *Parsers {
	return &Parsers{}
}

// Register associates parser with segment. Registering a segment again
// replaces its parser in place.
func (p *Parsers) Register(segment string, parser Parser) *Parsers {
	if segment = strings.TrimSpace(segment); segment == "" || parser == nil {
		return p
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.entries {
		if p.entries[i].segment == segment {
			p.entries[i].parser = parser
			return p
		}
	}
	p.entries = append(p.entries, parserEntry{segment: segment, parser: parser})
	return p
}

// Select returns the parser for the last registered segment that appears in components.
func (p *Parsers) Select(components []string) (Parser, string, bool) {
	if p == nil {
		return nil, "", false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	var (
		selected Parser
		segment  string
	)
	for _, e := range p.entries {
		if slices.Contains(components, e.segment) {
			selected, segment = e.parser, e.segment
		}
	}
	return selected, segment, selected != nil
}

// Segments returns the registered segments in registration order.
func (p *Parsers) Segments() []string {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e.segment)
	}
	return out
}
