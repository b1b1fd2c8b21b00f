package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PizzaHomicide/shuchu/internal/domain"
	"github.com/PizzaHomicide/shuchu/internal/log"
)

type CourseRepository struct {
	client *Client
}

func NewCourseRepository(client *Client) domain.CourseRepository {
	return &CourseRepository{
		client: client,
	}
}

func (r *CourseRepository) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	var courses []*domain.Course
	if err := r.client.Do(ctx, http.MethodGet, "courses", nil, &courses); err != nil {
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}

	log.Info("Fetched protocols", "count", len(courses))
	return courses, nil
}

func (r *CourseRepository) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	if id == "" {
		return nil, fmt.Errorf("protocol id is empty")
	}

	var course domain.Course
	if err := r.client.Do(ctx, http.MethodGet, "courses/"+url.PathEscape(id), nil, &course); err != nil {
		return nil, fmt.Errorf("failed to fetch protocol %s: %w", id, mapNotFound(err))
	}

	log.Info("Fetched protocol", "id", course.ID, "modules", len(course.Videos))
	return &course, nil
}

func (r *CourseRepository) UpdateVideoCompletion(ctx context.Context, courseID, videoID string, completed bool) error {
	path := "courses/" + url.PathEscape(courseID) + "/videos/" + url.PathEscape(videoID)
	body := struct {
		IsCompleted bool `json:"isCompleted"`
	}{IsCompleted: completed}

	if err := r.client.Do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("failed to update module %s of protocol %s: %w", videoID, courseID, mapNotFound(err))
	}

	log.Debug("Updated module completion", "course_id", courseID, "video_id", videoID, "completed", completed)
	return nil
}

func (r *CourseRepository) CreateCourse(ctx context.Context, params *domain.CreateCourseParams) (*domain.Course, error) {
	if params == nil || params.Title == "" {
		return nil, fmt.Errorf("protocol title is required")
	}
	if len(params.Videos) == 0 {
		return nil, fmt.Errorf("protocol needs at least one module")
	}

	var course domain.Course
	if err := r.client.Do(ctx, http.MethodPost, "courses", params, &course); err != nil {
		return nil, fmt.Errorf("failed to create protocol: %w", err)
	}

	log.Info("Created protocol", "id", course.ID, "title", course.Title, "modules", len(course.Videos))
	return &course, nil
}

func mapNotFound(err error) error {
	var herr *HTTPError
	if errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", domain.ErrCourseNotFound, err)
	}
	return err
}
