package gamecache

import (
	"errors"
	"fmt"
)

var (
	// ErrParse marks a cache store that could not be decoded.
	ErrParse = errors.New("cache parse failed")
	// ErrPersistence marks a cache write that did not reach disk.
	ErrPersistence = errors.New("cache persistence failed")
)

// ParseError reports a malformed cache store.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse cache %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// PersistenceError reports a failed cache write.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist cache %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
