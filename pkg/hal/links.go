package hal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Link is a HAL link object.
type Link struct {
	Href        string `json:"href"`
	Templated   bool   `json:"templated,omitempty"`
	Type        string `json:"type,omitempty"`
	Deprecation string `json:"deprecation,omitempty"`
	Name        string `json:"name,omitempty"`
	Profile     string `json:"profile,omitempty"`
	Title       string `json:"title,omitempty"`
	HrefLang    string `json:"hreflang,omitempty"`
}

// LinkSet holds the links of one relation. On the wire a relation is either
// a single link object or an array of them; a bare string is read as an href.
type LinkSet []Link

// UnmarshalJSON accepts an object, an array of objects or a string.
func (s *LinkSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	switch data[0] {
	case '[':
		var links []Link
		if err := json.Unmarshal(data, &links); err != nil {
			return fmt.Errorf("decode link array: %w", err)
		}
		*s = links
	case '"':
		var href string
		if err := json.Unmarshal(data, &href); err != nil {
			return fmt.Errorf("decode link href: %w", err)
		}
		*s = LinkSet{{Href: href}}
	default:
		var link Link
		if err := json.Unmarshal(data, &link); err != nil {
			return fmt.Errorf("decode link object: %w", err)
		}
		*s = LinkSet{link}
	}
	return nil
}

// MarshalJSON writes a single link as an object and several as an array.
func (s LinkSet) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]Link(s))
}

// Links maps a relation name to its links.
type Links map[string]LinkSet

// Rels returns the relation names in sorted order.
func (l Links) Rels() []string {
	rels := make([]string, 0, len(l))
	for rel := range l {
		rels = append(rels, rel)
	}
	sort.Strings(rels)
	return rels
}

// Hrefs returns every non-empty href, ordered by relation name.
func (l Links) Hrefs() []string {
	var out []string
	for _, rel := range l.Rels() {
		for _, link := range l[rel] {
			if link.Href != "" {
				out = append(out, link.Href)
			}
		}
	}
	return out
}

// First returns the first link of rel.
func (l Links) First(rel string) (Link, bool) {
	set := l[rel]
	if len(set) == 0 {
		return Link{}, false
	}
	return set[0], true
}
