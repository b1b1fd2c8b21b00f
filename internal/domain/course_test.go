package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
	}{
		{"00:30", 30},
		{"01:00", 60},
		{"1:02:03", 3723},
		{"10:00:00", 36000},
		{" 02:05 ", 125},
		{"", 0},
		{"45", 0},
		{"1:2:3:4", 0},
		{"aa:bb", 0},
		{"-1:00", 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ParseDuration(tc.input), "ParseDuration(%q)", tc.input)
	}
}

func TestCourseProgress(t *testing.T) {
	course := &Course{
		ID: "c1",
		Videos: []Video{
			{ID: "a", Duration: "00:30", IsCompleted: true},
			{ID: "b", Duration: "01:00"},
			{ID: "c", Duration: "01:30"},
		},
	}

	assert.Equal(t, 1, course.CompletedCount())
	assert.Equal(t, 33, course.Progress())
	assert.False(t, course.IsCompleted())
	assert.True(t, course.HasIncomplete())
	assert.Equal(t, 180, course.TotalSeconds())
	assert.InDelta(t, 60.0, course.WatchedSeconds(), 0.001)
	assert.Equal(t, 1, course.VideoIndex("b"))
	assert.Equal(t, -1, course.VideoIndex("missing"))

	for i := range course.Videos {
		course.Videos[i].IsCompleted = true
	}
	assert.Equal(t, 100, course.Progress())
	assert.True(t, course.IsCompleted())
	assert.False(t, course.HasIncomplete())
}

func TestEmptyCourse(t *testing.T) {
	course := &Course{ID: "empty"}

	assert.Equal(t, 0, course.Progress())
	assert.False(t, course.IsCompleted())
	assert.Zero(t, course.WatchedSeconds())
}

func TestVideoDisplayTitle(t *testing.T) {
	assert.Equal(t, "Intro", Video{Title: "Intro"}.DisplayTitle(0))
	assert.Equal(t, "Module 3", Video{Title: "  "}.DisplayTitle(2))
}

func TestCourseDecodesBackendJSON(t *testing.T) {
	payload := `{
		"_id": "c1",
		"title": "Advanced Go",
		"videos": [
			{"_id": "a", "title": "Intro", "url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			 "youtubeId": "dQw4w9WgXcQ", "type": "video", "isCompleted": true, "duration": "00:30"},
			{"_id": "b", "url": "https://youtube.com/playlist?list=PL123", "youtubeId": "PL123", "type": "playlist"}
		]
	}`

	var course Course
	require.NoError(t, json.Unmarshal([]byte(payload), &course))

	assert.Equal(t, "c1", course.ID)
	require.Len(t, course.Videos, 2)
	assert.Equal(t, VideoTypeVideo, course.Videos[0].Type)
	assert.True(t, course.Videos[0].IsCompleted)
	assert.Equal(t, 30, course.Videos[0].DurationSeconds())
	assert.Equal(t, VideoTypePlaylist, course.Videos[1].Type)
}

func TestVideoIDFallback(t *testing.T) {
	var video Video
	require.NoError(t, json.Unmarshal([]byte(`{"id": "plain", "title": "X"}`), &video))
	assert.Equal(t, "plain", video.ID)
	assert.Equal(t, "X", video.Title)

	require.NoError(t, json.Unmarshal([]byte(`{"_id": "doc", "id": "plain"}`), &video))
	assert.Equal(t, "doc", video.ID)
}

func TestCourseCloneSharesNoModules(t *testing.T) {
	original := &Course{ID: "c1", Videos: []Video{{ID: "a"}}}
	clone := original.Clone()

	clone.Videos[0].IsCompleted = true
	assert.False(t, original.Videos[0].IsCompleted)
	assert.Equal(t, "c1", clone.ID)
	assert.Nil(t, (*Course)(nil).Clone())
}
