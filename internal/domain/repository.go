package domain

import (
	"context"
	"errors"
)

// ErrCourseNotFound is returned when the backend has no course with the requested ID
var ErrCourseNotFound = errors.New("protocol not found")

// CourseRepository defines the interface for protocol data access
type CourseRepository interface {
	// ListCourses retrieves every protocol visible to the user, in backend order
	ListCourses(ctx context.Context) ([]*Course, error)

	// GetCourse retrieves a single protocol by ID
	GetCourse(ctx context.Context, id string) (*Course, error)

	// UpdateVideoCompletion sets the completion flag of one module
	UpdateVideoCompletion(ctx context.Context, courseID, videoID string, completed bool) error

	// CreateCourse creates a new protocol.  Protocols are immutable once created.
	CreateCourse(ctx context.Context, params *CreateCourseParams) (*Course, error)
}

// CreateCourseParams is the body of a protocol creation request
type CreateCourseParams struct {
	Title  string        `json:"title"`
	Videos []ModuleDraft `json:"videos"`
}

// ModuleDraft is a module that has been resolved from a URL but not yet persisted
type ModuleDraft struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	YoutubeID string    `json:"youtubeId"`
	Type      VideoType `json:"type"`
}
