package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// VideoType distinguishes a single video module from a playlist module
type VideoType string

const (
	VideoTypeVideo    VideoType = "video"
	VideoTypePlaylist VideoType = "playlist"
)

// Course is a 'protocol': an ordered, immutable sequence of modules.  Only the completion flags change after creation.
type Course struct {
	ID     string  `json:"_id"`
	Title  string  `json:"title"`
	Videos []Video `json:"videos"`
}

// Video is a single module of a protocol
type Video struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	YoutubeID   string    `json:"youtubeId"`
	Type        VideoType `json:"type"`
	IsCompleted bool      `json:"isCompleted"`
	// Either "HH:MM:SS" or "MM:SS"
	Duration string `json:"duration,omitempty"`
}

// UnmarshalJSON accepts "id" when the backend omits "_id"
func (v *Video) UnmarshalJSON(data []byte) error {
	type alias Video
	var raw struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Video(raw.alias)
	if v.ID == "" {
		v.ID = raw.AltID
	}
	return nil
}

// DisplayTitle returns the module title or a positional fallback when it has none
func (v Video) DisplayTitle(index int) string {
	if strings.TrimSpace(v.Title) != "" {
		return v.Title
	}
	return fmt.Sprintf("Module %d", index+1)
}

// DurationSeconds returns the parsed duration of the module
func (v Video) DurationSeconds() int {
	return ParseDuration(v.Duration)
}

// Clone returns a copy of the course that shares no module memory with c
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	copied := *c
	if c.Videos != nil {
		copied.Videos = append([]Video(nil), c.Videos...)
	}
	return &copied
}

// VideoIndex returns the position of the video with the given ID, or -1
func (c *Course) VideoIndex(videoID string) int {
	for i, v := range c.Videos {
		if v.ID == videoID {
			return i
		}
	}
	return -1
}

// CompletedCount returns the number of completed modules
func (c *Course) CompletedCount() int {
	count := 0
	for _, v := range c.Videos {
		if v.IsCompleted {
			count++
		}
	}
	return count
}

// Progress returns the completion percentage rounded to the nearest integer.  An empty course has no progress.
func (c *Course) Progress() int {
	if len(c.Videos) == 0 {
		return 0
	}
	return int(math.Round(float64(c.CompletedCount()) / float64(len(c.Videos)) * 100))
}

// IsCompleted reports whether the course has modules and all of them are completed
func (c *Course) IsCompleted() bool {
	return len(c.Videos) > 0 && c.CompletedCount() == len(c.Videos)
}

// HasIncomplete reports whether at least one module is still to be watched
func (c *Course) HasIncomplete() bool {
	for _, v := range c.Videos {
		if !v.IsCompleted {
			return true
		}
	}
	return false
}

// TotalSeconds sums the durations of every module
func (c *Course) TotalSeconds() int {
	total := 0
	for _, v := range c.Videos {
		total += v.DurationSeconds()
	}
	return total
}

// WatchedSeconds estimates time spent on the course by weighting its total duration with the share of completed modules
func (c *Course) WatchedSeconds() float64 {
	if len(c.Videos) == 0 {
		return 0
	}
	ratio := float64(c.CompletedCount()) / float64(len(c.Videos))
	return float64(c.TotalSeconds()) * ratio
}

// ParseDuration converts "HH:MM:SS" or "MM:SS" into seconds.  Anything else, including malformed parts, is 0.
func ParseDuration(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		nums[i] = n
	}

	switch len(nums) {
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2]
	case 2:
		return nums[0]*60 + nums[1]
	default:
		return 0
	}
}
