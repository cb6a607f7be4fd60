// Package restmapper is a lazy, chained client for REST APIs that describe
// their resources with HAL links.
//
// A Mapper holds the connection-level configuration: a URL template, a
// parser registry keyed by path segment, a response callback and the TLS
// policy. Navigating from a Mapper produces a Call, which accumulates path
// segments until Do sends the request:
//
//	m := restmapper.New("https://api.test/{path}")
//	res, err := m.Resource("orders").Index(42).Resource("items").Do(ctx)
//
// The URL template uses {name} placeholders filled from the URL parameters
// given to Configure. The reserved {path} placeholder receives the joined
// segments; without it the segments are appended to the formatted template.
//
// Calls also expose the resource's HAL links so a caller can discover which
// segments may follow. Discovery is advisory; nothing is validated locally
// before a request is sent.
package restmapper
