// Package discord implements presence.Updater over the Discord desktop
// client's local IPC socket.
//
// Frames are an 8 byte header (little-endian opcode, little-endian payload
// length) followed by a JSON payload. The client handshakes with opcode 0
// and sends SET_ACTIVITY commands with opcode 1.
package discord
