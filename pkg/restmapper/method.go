package restmapper

import (
	"errors"
	"net/http"
)

// Method is an HTTP verb a call can be bound to.
type Method string

const (
	GET    Method = http.MethodGet
	POST   Method = http.MethodPost
	PUT    Method = http.MethodPut
	PATCH  Method = http.MethodPatch
	DELETE Method = http.MethodDelete
)

// ErrUnknownMethod is returned for verbs outside GET, POST, PUT, PATCH and DELETE.
var ErrUnknownMethod = errors.New("restmapper: unknown method")

// Methods lists the supported verbs.
var Methods = []Method{GET, POST, PUT, PATCH, DELETE}

// ParseMethod maps a verb name to a Method. Matching is case-sensitive.
func ParseMethod(s string) (Method, bool) {
	for _, m := range Methods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

func (m Method) String() string { return string(m) }
