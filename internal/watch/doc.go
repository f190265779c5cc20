// Package watch runs the long-lived title loop behind `gfnpresence watch`.
//
// A Watcher holds a flock on the state directory lock file so only one
// process drives the Discord session, then forwards each distinct window
// title it reads to the presence service.
package watch
