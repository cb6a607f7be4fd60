// Package hal decodes the subset of the HAL media type used for resource
// discovery: the _links and _embedded members of a JSON object, and the
// helpers that turn link hrefs into navigable path segments.
package hal
