package course

import "regexp"

const youTubeIDLength = 11

// Short links, /v/ and /u/<x>/ paths, embeds, canonical watch URLs and
// watch URLs carrying v= after other parameters.
var youTubeURLPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// ExtractYouTubeID returns the 11-character video identifier carried by url,
// or "" when url is not a recognized YouTube URL.
func ExtractYouTubeID(url string) string {
	if url == "" {
		return ""
	}

	match := youTubeURLPattern.FindStringSubmatch(url)
	if match == nil || len(match[2]) != youTubeIDLength {
		return ""
	}

	return match[2]
}
