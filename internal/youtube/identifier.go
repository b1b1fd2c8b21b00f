// Package youtube resolves user supplied YouTube links into module identifiers.
package youtube

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PizzaHomicide/shuchu/internal/domain"
)

// ErrInvalidVideo is returned when neither a video nor a playlist ID can be found in the input
var ErrInvalidVideo = errors.New("invalid youtube url")

const videoIDLength = 11

var (
	videoIDPattern    = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)
	playlistIDPattern = regexp.MustCompile(`[?&]list=([^#&?]+)`)
	iframeSrcPattern  = regexp.MustCompile(`src="([^"]+)"`)
)

// ExtractVideoID returns the 11 character video ID in url, or "" when there is none
func ExtractVideoID(url string) string {
	match := videoIDPattern.FindStringSubmatch(url)
	if match == nil || len(match[2]) != videoIDLength {
		return ""
	}
	return match[2]
}

// ExtractPlaylistID returns the value of the list query parameter, or ""
func ExtractPlaylistID(url string) string {
	match := playlistIDPattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[1]
}

// CleanInput accepts a bare URL or a pasted <iframe> embed snippet and returns the URL to resolve
func CleanInput(input string) string {
	cleaned := strings.TrimSpace(input)
	if strings.Contains(cleaned, "<iframe") {
		if match := iframeSrcPattern.FindStringSubmatch(cleaned); match != nil {
			cleaned = match[1]
		}
	}
	return strings.Replace(cleaned, "youtube-nocookie.com", "youtube.com", 1)
}

// WatchURL returns the canonical watch page for a video ID
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// PlaylistURL returns the canonical playlist page for a playlist ID
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}

// Resolve turns raw user input into a module draft.  A playlist ID takes precedence over a video ID in the same URL.
func Resolve(raw string) (*domain.ModuleDraft, error) {
	cleaned := CleanInput(raw)

	if listID := ExtractPlaylistID(cleaned); listID != "" {
		return &domain.ModuleDraft{
			URL:       cleaned,
			YoutubeID: listID,
			Type:      domain.VideoTypePlaylist,
		}, nil
	}

	if videoID := ExtractVideoID(cleaned); videoID != "" {
		return &domain.ModuleDraft{
			URL:       WatchURL(videoID),
			YoutubeID: videoID,
			Type:      domain.VideoTypeVideo,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidVideo, raw)
}

// DefaultTitle names a module by its kind and position in the draft list
func DefaultTitle(draft *domain.ModuleDraft, position int) string {
	if draft.Type == domain.VideoTypePlaylist {
		return fmt.Sprintf("Playlist %d", position+1)
	}
	return fmt.Sprintf("Video %d", position+1)
}

// IsPlaylist reports whether a stored module should be played as a playlist.
// Older records carry no type, so a PL prefixed ID is also treated as a playlist.
func IsPlaylist(video domain.Video) bool {
	return video.Type == domain.VideoTypePlaylist || strings.HasPrefix(video.YoutubeID, "PL")
}

// PlaybackTarget returns the ID the player should load for a stored module, or "" when the module is unplayable
func PlaybackTarget(video domain.Video) string {
	if video.YoutubeID != "" {
		return video.YoutubeID
	}
	if IsPlaylist(video) {
		return ExtractPlaylistID(video.URL)
	}
	return ExtractVideoID(video.URL)
}

// PlaybackURL returns the URL handed to the player for a stored module, or "" when the module is unplayable
func PlaybackURL(video domain.Video) string {
	target := PlaybackTarget(video)
	if target == "" {
		return ""
	}
	if IsPlaylist(video) {
		return PlaylistURL(target)
	}
	return WatchURL(target)
}
