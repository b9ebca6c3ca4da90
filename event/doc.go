// Package event defines the closed set of pipeline events, the payload
// shape bound to each event name, and the registry that validates both
// at every publish and subscribe boundary.
package event
