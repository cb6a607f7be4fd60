package restmapper

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	pathParameter   = "path"
	pathPlaceholder = "{" + pathParameter + "}"
)

// ErrMissingParameter is returned when the URL template names a placeholder
// that has no value.
var ErrMissingParameter = errors.New("restmapper: missing url parameter")

// formatTemplate substitutes {name} placeholders in tpl.
func formatTemplate(tpl string, params map[string]string) (string, error) {
	return fasttemplate.ExecuteFuncStringWithErr(tpl, "{", "}", func(w io.Writer, tag string) (int, error) {
		v, ok := params[tag]
		if !ok {
			return 0, fmt.Errorf("%w %q in %q", ErrMissingParameter, tag, tpl)
		}
		return io.WriteString(w, v)
	})
}

// resolveURL builds the request URL for components. The parameter map is
// never modified; the path value goes into a copy.
func resolveURL(tpl string, params map[string]string, components []string) (string, error) {
	path := strings.Join(components, "/")
	if strings.Contains(tpl, pathPlaceholder) {
		withPath := make(map[string]string, len(params)+1)
		for k, v := range params {
			withPath[k] = v
		}
		withPath[pathParameter] = path
		return formatTemplate(tpl, withPath)
	}

	base, err := formatTemplate(tpl, params)
	if err != nil {
		return "", err
	}
	return base + path, nil
}

func copyParams(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
