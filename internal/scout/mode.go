package scout

import "strings"

// SearchMode selects which tweet ranking the discovery capability searches.
// The numeric values are the scraper's wire constants.
type SearchMode int

const (
	SearchTop    SearchMode = 0
	SearchLatest SearchMode = 1
	SearchPhotos SearchMode = 2
	SearchVideos SearchMode = 3
)

func (m SearchMode) String() string {
	switch m {
	case SearchTop:
		return "TOP"
	case SearchLatest:
		return "LATEST"
	case SearchPhotos:
		return "PHOTOS"
	case SearchVideos:
		return "VIDEOS"
	default:
		return "LATEST"
	}
}

// ResolveSearchMode maps a mode name to its wire constant, ignoring case.
// Unknown or empty names resolve to SearchLatest.
func ResolveSearchMode(name string) SearchMode {
	switch strings.ToUpper(name) {
	case "TOP":
		return SearchTop
	case "LATEST":
		return SearchLatest
	case "PHOTOS":
		return SearchPhotos
	case "VIDEOS":
		return SearchVideos
	default:
		return SearchLatest
	}
}
