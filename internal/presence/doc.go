// Package presence maps GeForce NOW window titles to rich presence
// activities. The transport is abstracted behind Updater; see the discord
// subpackage for the Discord IPC implementation.
package presence
