package discord

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

const maxSocketIndex = 10

// socketDirs lists the directories Discord may create its IPC sockets in.
func socketDirs() []string {
	var dirs []string
	seen := map[string]bool{}
	add := func(dir string) {
		if dir == "" || seen[dir] {
			return
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	add(os.Getenv("XDG_RUNTIME_DIR"))
	add(filepath.Join("/run/user", strconv.Itoa(unix.Getuid())))
	add(os.Getenv("TMPDIR"))
	add("/tmp")
	return dirs
}

// FindSocket returns the first existing discord-ipc-N socket.
func FindSocket() (string, error) {
	return findSocketIn(socketDirs())
}

func findSocketIn(dirs []string) (string, error) {
	for _, dir := range dirs {
		for i := 0; i < maxSocketIndex; i++ {
			path := filepath.Join(dir, fmt.Sprintf("discord-ipc-%d", i))
			info, err := os.Stat(path)
			if err == nil && info.Mode()&os.ModeSocket != 0 {
				return path, nil
			}
		}
	}
	return "", ErrNoSocket
}
