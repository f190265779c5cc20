package presence

import (
	"regexp"
	"strings"
	"time"
)

const (
	// HomeDetails is shown when the window is not a game session.
	HomeDetails = "Home on GeForce NOW"
	// DisclaimerState is the fixed second presence line.
	DisclaimerState = "Not affiliated with NVIDIA"
	// FallbackImageKey is the uploaded asset used when no app id is known.
	FallbackImageKey = "nvidia"
)

const windowSuffix = "on GeForce NOW"

var (
	suffixPattern = regexp.MustCompile(`(?i)\s+on GeForce NOW$`)
	imageKeyID    = regexp.MustCompile(`^\d{1,7}$`)
)

// Activity is the rich presence payload.
type Activity struct {
	Details        string    `json:"details"`
	State          string    `json:"state"`
	StartTimestamp time.Time `json:"start_timestamp"`
	Instance       bool      `json:"instance"`
	LargeImageKey  string    `json:"large_image_key"`
}

// ExtractGameName returns the game part of a GeForce NOW window title such as
// "Halo Infinite on GeForce NOW". When the marker is present but not at the
// end, the whole trimmed title is the name. The home page is not a game.
func ExtractGameName(windowTitle string) (string, bool) {
	if !strings.Contains(windowTitle, windowSuffix) {
		return "", false
	}
	name := strings.TrimSpace(suffixPattern.ReplaceAllString(windowTitle, ""))
	if name == "" || name == windowSuffix || strings.EqualFold(name, "Home") {
		return "", false
	}
	return name, true
}

// LargeImageKey returns appID when it looks like a Steam id Discord has
// artwork for, otherwise the fallback asset.
func LargeImageKey(appID string) string {
	if imageKeyID.MatchString(appID) {
		return appID
	}
	return FallbackImageKey
}
