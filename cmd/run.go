package cmd

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizplay/internal/app"
	"github.com/abhisek/quizplay/internal/config"
	"github.com/abhisek/quizplay/internal/gateway"
	"github.com/abhisek/quizplay/internal/gateway/moodle"
	"github.com/abhisek/quizplay/internal/logger"
	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/store"
)

// env is what every command needs: settings, a logger and a gateway that
// journals its calls.
type env struct {
	cfg       config.Config
	log       zerolog.Logger
	gw        gateway.Gateway
	store     *store.Store
	sessionID string
	courseID  int
	quizID    int
	closers   []io.Closer
}

func (e *env) Close() error {
	var result *multierror.Error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// setup loads configuration, applies flag overrides and builds the gateway.
func setup(cmd *cobra.Command) (*env, error) {
	cfg := config.Load()
	flags := cmd.Flags()
	if v, _ := flags.GetString("site"); v != "" {
		cfg.Site.URL = v
	}
	if v, _ := flags.GetString("token"); v != "" {
		cfg.Site.Token = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}

	e := &env{cfg: cfg, sessionID: uuid.New().String()}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := logger.OpenFile(cfg.Log.File)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, logFile)
	e.log = logger.Setup(cfg.Log.Level, cfg.Log.Format, logFile).
		With().Str("session_id", e.sessionID).Logger()

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, st)

	inner, err := buildGateway(cmd, e)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.gw = gateway.WithJournal(inner, st.JournalRepo(), e.sessionID, e.log)
	return e, nil
}

func buildGateway(cmd *cobra.Command, e *env) (gateway.Gateway, error) {
	flags := cmd.Flags()
	e.courseID, _ = flags.GetInt("course")
	e.quizID, _ = flags.GetInt("quiz")

	if demo, _ := flags.GetBool("demo"); demo {
		password, _ := flags.GetString("demo-password")
		mode := quiz.NavFree
		if seq, _ := flags.GetBool("sequential"); seq {
			mode = quiz.NavSequential
		}
		if e.courseID == 0 {
			e.courseID = gateway.DemoCourseID
		}
		if e.quizID == 0 {
			e.quizID = gateway.DemoQuizID
		}
		e.log.Info().Str("mode", string(mode)).Msg("using demo quiz")
		return gateway.NewDemo(password, mode), nil
	}

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if e.courseID <= 0 || e.quizID <= 0 {
		return nil, fmt.Errorf("--course and --quiz are required")
	}
	client, err := moodle.New(moodle.Config{
		SiteURL:    e.cfg.Site.URL,
		Token:      e.cfg.Site.Token,
		Timeout:    e.cfg.Site.Timeout,
		MaxRetries: e.cfg.Site.RetryMax,
	}, e.log)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	e.log.Info().Int("course_id", e.courseID).Int("quiz_id", e.quizID).Msg("starting player")
	return app.Run(app.Options{
		Gateway:    e.gw,
		CourseID:   e.courseID,
		QuizID:     e.quizID,
		FocusDelay: e.cfg.FocusDelay,
		Logger:     e.log,
	})
}
