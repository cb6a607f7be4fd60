package crawler

import (
	"context"

	"github.com/samvad-hq/restmapper/pkg/hal"
	"github.com/samvad-hq/restmapper/pkg/restmapper"
)

// Navigator is the root of a resource graph (a *restmapper.Mapper).
type Navigator interface {
	URL() (string, error)
	Links(ctx context.Context) (hal.Links, error)
	Resource(name string) *restmapper.Call
}

// Logger is the logging surface the crawler relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}
