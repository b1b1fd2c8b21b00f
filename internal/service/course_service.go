package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PizzaHomicide/shuchu/internal/domain"
	"github.com/PizzaHomicide/shuchu/internal/log"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

type CourseService struct {
	repo       domain.CourseRepository
	courses    []*domain.Course // Service owned copy of the protocol list, only refreshed on request.  Callers only ever see clones.
	updateLock sync.Mutex
}

func NewCourseService(repo domain.CourseRepository) *CourseService {
	return &CourseService{
		repo: repo,
	}
}

// Stats summarises learning progress across every protocol
type Stats struct {
	TotalCourses     int
	CompletedCourses int
	HoursLearned     float64
}

func (s *CourseService) GetCourses() []*domain.Course {
	s.updateLock.Lock()
	defer s.updateLock.Unlock()
	return cloneCourses(s.courses)
}

func cloneCourses(courses []*domain.Course) []*domain.Course {
	if courses == nil {
		return nil
	}
	out := make([]*domain.Course, len(courses))
	for i, c := range courses {
		out[i] = c.Clone()
	}
	return out
}

// LoadCourses fetches the complete protocol list from the repository
func (s *CourseService) LoadCourses(ctx context.Context) error {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return err
	}

	s.updateLock.Lock()
	s.courses = cloneCourses(courses)
	s.updateLock.Unlock()
	return nil
}

// GetCourse always fetches the protocol fresh, refreshing the cached copy if one exists
func (s *CourseService) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	course, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	s.updateLock.Lock()
	defer s.updateLock.Unlock()
	for i, c := range s.courses {
		if c.ID == course.ID {
			s.courses[i] = course.Clone()
		}
	}
	return course.Clone(), nil
}

// ResumeCourse picks the first protocol that still has an incomplete module, falling back to the first protocol
func (s *CourseService) ResumeCourse(ctx context.Context) (*domain.Course, error) {
	if s.GetCourses() == nil {
		if err := s.LoadCourses(ctx); err != nil {
			return nil, fmt.Errorf("failed to load protocols: %w", err)
		}
	}

	courses := s.GetCourses()
	if len(courses) == 0 {
		return nil, fmt.Errorf("no protocols available: %w", domain.ErrCourseNotFound)
	}

	for _, c := range courses {
		if c.HasIncomplete() {
			return c, nil
		}
	}
	return courses[0], nil
}

// Stats computes dashboard figures from the cached list
func (s *CourseService) Stats() Stats {
	courses := s.GetCourses()

	stats := Stats{TotalCourses: len(courses)}
	var seconds float64
	for _, c := range courses {
		if c.IsCompleted() {
			stats.CompletedCourses++
		}
		seconds += c.WatchedSeconds()
	}
	stats.HoursLearned = seconds / 3600
	return stats
}

// PersistCompletion writes a module's completion flag to the backend and keeps the cached copy in line with it.
// Courses previously handed out are never touched; their owners track completion themselves.
func (s *CourseService) PersistCompletion(ctx context.Context, courseID, videoID string, completed bool) error {
	if err := s.repo.UpdateVideoCompletion(ctx, courseID, videoID, completed); err != nil {
		return fmt.Errorf("failed to persist completion: %w", err)
	}

	s.updateLock.Lock()
	defer s.updateLock.Unlock()
	for _, c := range s.courses {
		if c.ID != courseID {
			continue
		}
		if i := c.VideoIndex(videoID); i >= 0 {
			c.Videos[i].IsCompleted = completed
			log.Debug("Synchronized cached module completion", "course_id", courseID, "video_id", videoID, "completed", completed)
		}
	}

	log.Info("Persisted module completion", "course_id", courseID, "video_id", videoID, "completed", completed)
	return nil
}

// CreateCourse creates a protocol and appends it to the cached list
func (s *CourseService) CreateCourse(ctx context.Context, params *domain.CreateCourseParams) (*domain.Course, error) {
	course, err := s.repo.CreateCourse(ctx, params)
	if err != nil {
		return nil, err
	}

	s.updateLock.Lock()
	if s.courses != nil {
		s.courses = append(s.courses, course.Clone())
	}
	s.updateLock.Unlock()
	return course, nil
}

// FilterModules returns the indexes of modules whose title fuzzy matches query, in course order.  An empty query matches everything.
func FilterModules(course *domain.Course, query string) []int {
	query = strings.TrimSpace(query)
	indexes := make([]int, 0, len(course.Videos))
	for i, v := range course.Videos {
		if query == "" || fuzzy.MatchNormalizedFold(query, v.DisplayTitle(i)) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}
