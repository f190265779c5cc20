// Package main hosts the gfnpresence CLI entrypoint and command graph.
//
// Commands resolve GeForce NOW titles to Steam app ids, preview or send the
// Discord activity for a window title, run the stdin driven watch loop and
// inspect the resolution cache, override table and lookup history. Wiring of
// the internal packages lives in context.go so each command stays small.
package main
