package hal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
)

const (
	linksKey    = "_links"
	embeddedKey = "_embedded"
)

// ErrNoLinks is returned when a resource has no _links member.
var ErrNoLinks = errors.New("hal: resource has no _links")

// Resource is a decoded HAL object.
type Resource struct {
	Links    Links
	Embedded map[string][]Resource
	Fields   map[string]any

	hasLinks bool
}

// Parse decodes body as a HAL resource. The body must be a JSON object.
func Parse(body []byte) (*Resource, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return nil, fmt.Errorf("hal: decode resource: %w", err)
	}
	return fromMembers(members)
}

func fromMembers(members map[string]json.RawMessage) (*Resource, error) {
	res := &Resource{Fields: make(map[string]any, len(members))}

	for key, raw := range members {
		switch key {
		case linksKey:
			var links Links
			if err := json.Unmarshal(raw, &links); err != nil {
				return nil, fmt.Errorf("hal: decode _links: %w", err)
			}
			if links == nil {
				links = Links{}
			}
			res.Links = links
			res.hasLinks = true
		case embeddedKey:
			embedded, err := parseEmbedded(raw)
			if err != nil {
				return nil, err
			}
			res.Embedded = embedded
		default:
			v, err := DecodeValue(raw)
			if err != nil {
				return nil, fmt.Errorf("hal: decode field %q: %w", key, err)
			}
			res.Fields[key] = v
		}
	}
	return res, nil
}

func parseEmbedded(raw json.RawMessage) (map[string][]Resource, error) {
	var rels map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rels); err != nil {
		return nil, fmt.Errorf("hal: decode _embedded: %w", err)
	}

	out := make(map[string][]Resource, len(rels))
	for rel, value := range rels {
		value = bytes.TrimSpace(value)
		if len(value) == 0 || bytes.Equal(value, []byte("null")) {
			out[rel] = nil
			continue
		}

		var items []map[string]json.RawMessage
		if value[0] == '[' {
			if err := json.Unmarshal(value, &items); err != nil {
				return nil, fmt.Errorf("hal: decode _embedded %q: %w", rel, err)
			}
		} else {
			var item map[string]json.RawMessage
			if err := json.Unmarshal(value, &item); err != nil {
				return nil, fmt.Errorf("hal: decode _embedded %q: %w", rel, err)
			}
			items = append(items, item)
		}

		resources := make([]Resource, 0, len(items))
		for _, item := range items {
			r, err := fromMembers(item)
			if err != nil {
				return nil, fmt.Errorf("hal: _embedded %q: %w", rel, err)
			}
			resources = append(resources, *r)
		}
		out[rel] = resources
	}
	return out, nil
}

// HasLinks reports whether the _links member was present.
func (r *Resource) HasLinks() bool { return r != nil && r.hasLinks }

// RequireLinks returns the links or ErrNoLinks when the member is absent.
func (r *Resource) RequireLinks() (Links, error) {
	if !r.HasLinks() {
		return nil, ErrNoLinks
	}
	return r.Links, nil
}

// Link returns the first link for rel.
func (r *Resource) Link(rel string) (Link, bool) {
	if r == nil {
		return Link{}, false
	}
	return r.Links.First(rel)
}

// EmbeddedValues returns the embedded collections ordered by relation name.
// A resource without _embedded yields an empty result.
func (r *Resource) EmbeddedValues() [][]Resource {
	if r == nil || len(r.Embedded) == 0 {
		return [][]Resource{}
	}
	rels := make([]string, 0, len(r.Embedded))
	for rel := range r.Embedded {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	out := make([][]Resource, 0, len(rels))
	for _, rel := range rels {
		out = append(out, r.Embedded[rel])
	}
	return out
}

// EmbeddedHrefs returns every href declared in the _links of every embedded
// item. Items without _links contribute nothing.
func (r *Resource) EmbeddedHrefs() []string {
	var out []string
	for _, items := range r.EmbeddedValues() {
		for _, item := range items {
			out = append(out, item.Links.Hrefs()...)
		}
	}
	return out
}

var indexSegment = regexp.MustCompile(`^([0-9]+)/`)

// StripBase removes base from the front of href together with a trailing
// templated suffix such as "{?page,size}". An href that does not start with
// base is returned unchanged.
func StripBase(base, href string) string {
	re, err := regexp.Compile(`^` + regexp.QuoteMeta(base) + `(.*?)(\{.+\})?$`)
	if err != nil {
		return href
	}
	m := re.FindStringSubmatch(href)
	if m == nil {
		return href
	}
	return m[1]
}

// IndexNotation rewrites a leading numeric segment ("3/items") into index
// notation ("[3].items").
func IndexNotation(segment string) string {
	return indexSegment.ReplaceAllString(segment, "[$1].")
}
