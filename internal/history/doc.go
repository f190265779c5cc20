// Package history journals network-backed title lookups in a SQLite
// database so misses and low-confidence matches can be reviewed later with
// `gfnpresence history`.
package history
