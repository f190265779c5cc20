// Package artwork downloads Steam capsule images for resolved games.
package artwork
