// Package services defines shared plumbing consumed by the resolution engine
// and the commands that drive it.
//
// The context helpers stamp correlation identifiers, the title under
// resolution, and the triggering caller onto a context so that the logging
// package can attach them to every line emitted while that work runs.
package services
