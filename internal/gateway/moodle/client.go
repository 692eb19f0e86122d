// Package moodle implements the quiz gateway over the Moodle web-service
// REST protocol.
package moodle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"
	"github.com/rs/zerolog"

	"github.com/abhisek/quizplay/internal/gateway"
	"github.com/abhisek/quizplay/internal/quiz"
)

// Config configures the web-service client.
type Config struct {
	SiteURL string
	Token   string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// MaxRetries is the number of extra tries for read-only calls.
	MaxRetries int

	// RetryInitialWait is the first backoff interval.
	RetryInitialWait time.Duration
}

// Client talks to a Moodle site on behalf of one user token.
type Client struct {
	cfg  Config
	http *req.Client
	log  zerolog.Logger
}

var _ gateway.Gateway = (*Client)(nil)

// New creates a Client. SiteURL and Token are required.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.SiteURL == "" {
		return nil, errors.New("moodle: site URL is required")
	}
	if cfg.Token == "" {
		return nil, errors.New("moodle: token is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryInitialWait <= 0 {
		cfg.RetryInitialWait = 200 * time.Millisecond
	}

	httpClient := req.C().
		SetBaseURL(strings.TrimRight(cfg.SiteURL, "/")).
		SetTimeout(cfg.Timeout).
		SetUserAgent("quizplay")

	return &Client{
		cfg:  cfg,
		http: httpClient,
		log:  log.With().Str("component", "moodle").Logger(),
	}, nil
}

// call invokes a web-service function and decodes the result into out.
// Only idempotent reads should pass retry. Each try decodes into a fresh
// value that replaces *out only when the whole try succeeded.
func (c *Client) call(ctx context.Context, fn string, params url.Values, out any, retry bool) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("wstoken", c.cfg.Token)
	params.Set("wsfunction", fn)
	params.Set("moodlewsrestformat", "json")

	op := func() error {
		body, err := c.do(ctx, fn, params)
		var remote *gateway.RemoteError
		if errors.As(err, &remote) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		return decodeResult(fn, body, out)
	}

	var err error
	if !retry || c.cfg.MaxRetries <= 0 {
		err = unwrapPermanent(op())
	} else {
		b := backoff.WithContext(backoff.WithMaxRetries(&backoff.ExponentialBackOff{
			InitialInterval:     c.cfg.RetryInitialWait,
			RandomizationFactor: 0.2,
			Multiplier:          2,
			MaxInterval:         10 * c.cfg.RetryInitialWait,
			MaxElapsedTime:      c.cfg.Timeout * time.Duration(c.cfg.MaxRetries+1),
			Stop:                backoff.Stop,
			Clock:               backoff.SystemClock,
		}, uint64(c.cfg.MaxRetries)), ctx)

		err = unwrapPermanent(backoff.RetryNotify(op, b, func(err error, next time.Duration) {
			c.log.Warn().Err(err).Str("function", fn).Dur("retry_in", next).Msg("web-service call failed, retrying")
		}))
	}
	return err
}

// decodeResult unmarshals body into a zero value of out's type and stores
// it in out on success. out must be a non-nil pointer or nil.
func decodeResult(fn string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	target := reflect.ValueOf(out).Elem()
	fresh := reflect.New(target.Type())
	if err := json.Unmarshal(body, fresh.Interface()); err != nil {
		return fmt.Errorf("%s: decode response: %w", fn, err)
	}
	target.Set(fresh.Elem())
	return nil
}

func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}

// do posts one request and returns its body. Service exceptions come back
// as *gateway.RemoteError.
func (c *Client) do(ctx context.Context, fn string, params url.Values) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormDataFromValues(params).
		Post(restPath)
	if err != nil {
		return nil, &gateway.ErrUnavailable{Err: fmt.Errorf("%s: %w", fn, err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &gateway.ErrUnavailable{Err: fmt.Errorf("%s: unexpected status %d", fn, resp.StatusCode)}
	}

	body := resp.Bytes()
	if remote := decodeException(body); remote != nil {
		return nil, remote
	}
	return body, nil
}

func decodeException(body []byte) *gateway.RemoteError {
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return nil
	}
	var e wsException
	if err := json.Unmarshal(body, &e); err != nil || e.Exception == "" {
		return nil
	}
	remote := &gateway.RemoteError{Code: e.ErrorCode, Message: e.Message}
	if e.ErrorCode == errorCodeInvalidRecord {
		remote.Err = gateway.ErrNotFound
	}
	return remote
}

// classifyPreflight tags credential rejections with the matching sentinel.
func classifyPreflight(err error, pf quiz.PreflightData) error {
	var remote *gateway.RemoteError
	if !errors.As(err, &remote) {
		return err
	}
	if remote.Code != errorCodePreflightRequired && remote.Code != errorCodePassword {
		return err
	}
	if pf.Empty() {
		remote.Err = gateway.ErrPreflightRequired
	} else {
		remote.Err = gateway.ErrPreflightInvalid
	}
	return remote
}

func (c *Client) GetQuiz(ctx context.Context, courseID, quizID int) (*quiz.Quiz, error) {
	params := url.Values{}
	params.Set("courseids[0]", intParam(courseID))

	var out wsQuizzes
	if err := c.call(ctx, fnGetQuizzesByCourses, params, &out, true); err != nil {
		return nil, err
	}
	for _, q := range out.Quizzes {
		if q.ID == quizID {
			return q.toQuiz(), nil
		}
	}
	return nil, &gateway.RemoteError{
		Code:    errorCodeInvalidRecord,
		Message: fmt.Sprintf("quiz %d not found in course %d", quizID, courseID),
		Err:     gateway.ErrNotFound,
	}
}

func (c *Client) GetAccessInfo(ctx context.Context, quizID int) (*quiz.AccessInfo, error) {
	params := url.Values{}
	params.Set("quizid", intParam(quizID))
	params.Set("attemptid", "0")

	var out wsAccessInfo
	if err := c.call(ctx, fnGetAttemptAccessInfo, params, &out, true); err != nil {
		return nil, err
	}
	return &quiz.AccessInfo{
		PreflightRequired:        out.IsPreflightCheckRequired,
		IsFinished:               out.IsFinished,
		PreventNewAttemptReasons: out.PreventNewAttemptReasons,
	}, nil
}

func (c *Client) GetUserAttempts(ctx context.Context, quizID int) ([]quiz.Attempt, error) {
	params := url.Values{}
	params.Set("quizid", intParam(quizID))
	params.Set("status", "all")
	params.Set("includepreviews", "1")

	var out wsAttempts
	if err := c.call(ctx, fnGetUserAttempts, params, &out, true); err != nil {
		return nil, err
	}
	attempts := make([]quiz.Attempt, 0, len(out.Attempts))
	for _, a := range out.Attempts {
		att, err := a.toAttempt()
		if err != nil {
			return nil, fmt.Errorf("attempt %d: %w", a.ID, err)
		}
		attempts = append(attempts, att)
	}
	return attempts, nil
}

func (c *Client) CreateOrContinueAttempt(ctx context.Context, quizID int, existing *quiz.Attempt, preflight quiz.PreflightData) (*quiz.Attempt, error) {
	if existing == nil {
		params := url.Values{}
		params.Set("quizid", intParam(quizID))
		params.Set("forcenew", "0")
		addNamedValues(params, "preflightdata", preflight)

		var out wsStartAttempt
		if err := c.call(ctx, fnStartAttempt, params, &out, false); err != nil {
			return nil, classifyPreflight(err, preflight)
		}
		att, err := out.Attempt.toAttempt()
		if err != nil {
			return nil, err
		}
		return &att, nil
	}

	// Resuming re-validates the credentials by reading the current page.
	out, err := c.attemptData(ctx, existing.ID, existing.CurrentPage, preflight)
	if err != nil {
		return nil, err
	}
	if out.Attempt.ID == 0 {
		cp := *existing
		return &cp, nil
	}
	att, err := out.Attempt.toAttempt()
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (c *Client) attemptData(ctx context.Context, attemptID, page int, preflight quiz.PreflightData) (*wsAttemptData, error) {
	params := url.Values{}
	params.Set("attemptid", intParam(attemptID))
	params.Set("page", intParam(page))
	addNamedValues(params, "preflightdata", preflight)

	var out wsAttemptData
	if err := c.call(ctx, fnGetAttemptData, params, &out, true); err != nil {
		return nil, classifyPreflight(err, preflight)
	}
	return &out, nil
}

func (c *Client) GetPage(ctx context.Context, attemptID, page int, preflight quiz.PreflightData) (*quiz.PageData, error) {
	out, err := c.attemptData(ctx, attemptID, page, preflight)
	if err != nil {
		return nil, err
	}
	return &quiz.PageData{Questions: toQuestions(out.Questions), NextPage: out.NextPage}, nil
}

func (c *Client) GetSummary(ctx context.Context, attemptID int, preflight quiz.PreflightData) ([]quiz.Question, error) {
	params := url.Values{}
	params.Set("attemptid", intParam(attemptID))
	addNamedValues(params, "preflightdata", preflight)

	var out wsSummary
	if err := c.call(ctx, fnGetAttemptSummary, params, &out, true); err != nil {
		return nil, classifyPreflight(err, preflight)
	}
	return toQuestions(out.Questions), nil
}

func (c *Client) SubmitAnswers(ctx context.Context, attemptID int, answers quiz.Answers, finish, timeUp bool) error {
	params := url.Values{}
	params.Set("attemptid", intParam(attemptID))
	params.Set("finishattempt", boolParam(finish))
	params.Set("timeup", boolParam(timeUp))
	addNamedValues(params, "data", answers)

	var out wsProcessAttempt
	return c.call(ctx, fnProcessAttempt, params, &out, false)
}

func (c *Client) LogPageViewed(ctx context.Context, attemptID, page int) error {
	params := url.Values{}
	params.Set("attemptid", intParam(attemptID))
	params.Set("page", intParam(page))
	return c.call(ctx, fnViewAttempt, params, nil, false)
}

func (c *Client) LogSummaryViewed(ctx context.Context, attemptID int) error {
	params := url.Values{}
	params.Set("attemptid", intParam(attemptID))
	return c.call(ctx, fnViewAttemptSummary, params, nil, false)
}
