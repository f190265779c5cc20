// Package steam queries the Steam storefront search page and extracts
// app id / title pairs from the returned HTML.
package steam
