package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/PizzaHomicide/shuchu/internal/config"
	"github.com/PizzaHomicide/shuchu/internal/domain"
	"github.com/PizzaHomicide/shuchu/internal/log"
	"github.com/PizzaHomicide/shuchu/internal/playback"
	"github.com/PizzaHomicide/shuchu/internal/player"
	"github.com/PizzaHomicide/shuchu/internal/repository/rest"
	"github.com/PizzaHomicide/shuchu/internal/service"
	"github.com/PizzaHomicide/shuchu/internal/session"
	"github.com/PizzaHomicide/shuchu/internal/ui/tui"
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/models"
	"github.com/PizzaHomicide/shuchu/internal/version"
	"github.com/PizzaHomicide/shuchu/internal/youtube"
	"github.com/jonboulle/clockwork"
)

const usage = `Usage:
  shuchu [protocol-id]              open a protocol, or resume the first unfinished one
  shuchu list                       list protocols with their progress
  shuchu new -title TITLE URL...    create a protocol from YouTube videos or playlists
  shuchu version                    print version information
`

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// It is unrecoverable if we cannot produce an application config
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialise logger
	logger, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	// Set the default global logger
	log.SetDefaultLogger(logger)

	log.Info("Starting up Shuchu", "version", version.GetVersion(), "build_time", version.GetBuildTime())

	if err := run(cfg, os.Args[1:], os.Stdout); err != nil {
		log.Error("Shuchu exited with an error", "error", err)
		_, _ = fmt.Fprintf(os.Stderr, "shuchu: %v\n", err)
		logger.Close()
		os.Exit(1)
	}

	log.Info("Shuchu shutting down.  Goodbye!")
}

func run(cfg *config.Config, args []string, out io.Writer) error {
	command := ""
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "version":
		_, _ = fmt.Fprintln(out, version.GetVersionInfo())
		return nil
	case "help", "-h", "--help":
		_, _ = fmt.Fprint(out, usage)
		return nil
	case "list":
		courses, err := newCourseService(cfg)
		if err != nil {
			return err
		}
		return listCourses(courses, out)
	case "new":
		courses, err := newCourseService(cfg)
		if err != nil {
			return err
		}
		return createCourse(courses, args[1:], out)
	}

	if len(args) > 1 {
		_, _ = fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	return runPlayer(cfg, command)
}

func newCourseService(cfg *config.Config) (*service.CourseService, error) {
	client, err := rest.NewClient(rest.ClientConfig{
		BaseURL:   cfg.API.BaseURL,
		AuthToken: cfg.Auth.Token,
		Timeout:   cfg.APITimeout(),
		Retry:     rest.RetryConfig{MaxAttempts: cfg.API.MaxAttempts},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return service.NewCourseService(rest.NewCourseRepository(client)), nil
}

func runPlayer(cfg *config.Config, courseID string) error {
	courses, err := newCourseService(cfg)
	if err != nil {
		return err
	}

	user, err := session.NewUserProvider(cfg.Auth.Token, func() error {
		cfg.Auth.Token = ""
		return config.UpdateConfig(func(conf *config.Config) {
			conf.Auth.Token = ""
		})
	})
	switch {
	case errors.Is(err, session.ErrNoToken):
		log.Info("No auth token configured, continuing without a user")
	case err != nil:
		log.Warn("Stored auth token could not be read", "error", err)
	}

	theme := session.NewTheme(cfg.UI.Theme, func(name session.ThemeName) error {
		cfg.UI.Theme = string(name)
		return config.UpdateConfig(func(conf *config.Config) {
			conf.UI.Theme = string(name)
		})
	})

	videoPlayer := player.CreateVideoPlayer(cfg)
	defer videoPlayer.Cleanup()

	scheduler := playback.NewLoopScheduler(clockwork.NewRealClock())
	defer scheduler.Stop()

	return tui.Run(models.Dependencies{
		Config:    cfg,
		Courses:   courses,
		User:      user,
		Theme:     theme,
		Player:    videoPlayer,
		Scheduler: scheduler,
		CourseID:  courseID,
	})
}

func listCourses(courses *service.CourseService, out io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := courses.LoadCourses(ctx); err != nil {
		return err
	}

	list := courses.GetCourses()
	if len(list) == 0 {
		_, _ = fmt.Fprintln(out, "No protocols yet.  Create one with: shuchu new -title TITLE URL...")
		return nil
	}

	for _, c := range list {
		_, _ = fmt.Fprintf(out, "%-26s %3d%%  %2d/%-2d  %s\n", c.ID, c.Progress(), c.CompletedCount(), len(c.Videos), c.Title)
	}

	stats := courses.Stats()
	_, _ = fmt.Fprintf(out, "\n%d protocols, %d completed, %.1f hours learned\n",
		stats.TotalCourses, stats.CompletedCourses, stats.HoursLearned)
	return nil
}

func createCourse(courses *service.CourseService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	title := fs.String("title", "", "protocol title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	params, err := buildCourseParams(*title, fs.Args())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	course, err := courses.CreateCourse(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to create protocol: %w", err)
	}

	log.Info("Protocol created", "course_id", course.ID, "modules", len(course.Videos))
	_, _ = fmt.Fprintf(out, "Created protocol %q (%s) with %d modules\n", course.Title, course.ID, len(course.Videos))
	return nil
}

// buildCourseParams resolves every URL into a module.  An untitled module is named after its position.
func buildCourseParams(title string, urls []string) (*domain.CreateCourseParams, error) {
	if title == "" {
		return nil, errors.New("a protocol title is required (-title)")
	}
	if len(urls) == 0 {
		return nil, errors.New("at least one YouTube URL is required")
	}

	params := &domain.CreateCourseParams{Title: title}
	for i, raw := range urls {
		draft, err := youtube.Resolve(raw)
		if err != nil {
			return nil, fmt.Errorf("module %d (%s): %w", i+1, raw, err)
		}
		draft.Title = youtube.DefaultTitle(draft, i)
		params.Videos = append(params.Videos, *draft)
	}
	return params, nil
}
