// Package client provides a Go client for the clarification API. It keeps a
// local session state machine in sync with the backend by consuming the SSE
// question stream, and lets callers answer questions and finalize the
// session into a plan.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/24thNight/clarify-backend/internal/session"
	"github.com/24thNight/clarify-backend/internal/stream"
	pkghttp "github.com/24thNight/clarify-backend/pkg/http"
	"go.uber.org/zap"
)

type Config struct {
	BaseURL string
	Logger  *zap.Logger

	// HTTPOptions are passed through to the underlying connector.
	HTTPOptions []pkghttp.HttpOpts
}

// Client drives one clarification session at a time. All methods are safe
// for concurrent use.
type Client struct {
	connector *pkghttp.Connector
	logger    *zap.Logger

	mu         sync.Mutex
	machine    *session.Machine
	streamBody io.ReadCloser
	cancel     context.CancelFunc
	done       chan struct{}
}

func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	connector := pkghttp.NewConnector(&pkghttp.ConnectorConfig{
		BaseURL: cfg.BaseURL,
		Logger:  logger,
	}, cfg.HTTPOptions...)

	return &Client{
		connector: connector,
		logger:    logger,
		machine:   session.NewMachine(logger),
	}
}

// StartSession creates a session on the backend, binds the local machine to
// its id, and starts consuming the question stream in the background. The
// returned channel from Done closes when the stream ends.
func (c *Client) StartSession(ctx context.Context, planID *string) (string, error) {
	// Starting over always wins: any previous stream is torn down and the
	// machine is reinitialized from scratch.
	c.closeStream()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.machine.Init(planID)

	var resp entity.StartSessionResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, "/clarification/sessions",
		&entity.StartSessionRequest{PlanID: planID}, &resp)
	if err != nil {
		c.machine.Reset()
		return "", fmt.Errorf("start session: %w", err)
	}

	c.machine.Bind(resp.SessionID)

	// The stream outlives the StartSession call; it is torn down by Close.
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	body, err := c.connector.DoStream(streamCtx, http.MethodGet,
		"/clarification/sessions/"+resp.SessionID+"/stream", nil)
	if err != nil {
		cancel()
		c.machine.Reset()
		return "", fmt.Errorf("open question stream: %w", err)
	}

	c.streamBody = body
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.consumeStream(body, c.done)

	return resp.SessionID, nil
}

func (c *Client) consumeStream(body io.ReadCloser, done chan struct{}) {
	defer close(done)
	defer body.Close()

	decoder := stream.NewDecoder(body)
	for {
		ev, err := decoder.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.logger.Warn("question stream read failed", zap.Error(err))
			}
			return
		}

		c.mu.Lock()
		c.machine.HandleStreamEvent(ev)
		c.mu.Unlock()
	}
}

// SubmitAnswer records an answer remotely and then mirrors it into the local
// machine. The question must have been received on the stream already.
func (c *Client) SubmitAnswer(ctx context.Context, questionID, value string) error {
	c.mu.Lock()
	snapshot := c.machine.Session()
	c.mu.Unlock()

	if snapshot == nil {
		return entity.ErrNoActiveSession
	}

	var resp entity.SubmitAnswerResponse
	err := c.connector.DoRequest(ctx, http.MethodPost,
		"/clarification/sessions/"+snapshot.ID+"/answers",
		&entity.SubmitAnswerRequest{QuestionID: questionID, Value: entity.AnswerValue(value)},
		&resp)
	if err != nil {
		return fmt.Errorf("submit answer: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.machine.AddAnswer(entity.Answer{QuestionID: questionID, Value: value}); err != nil {
		return fmt.Errorf("record answer locally: %w", err)
	}

	return nil
}

// AnswerCurrent answers the question at the current index. It returns false
// without side effects when no question has been received yet, so callers
// can gate input on the stream catching up.
func (c *Client) AnswerCurrent(ctx context.Context, value string) (bool, error) {
	c.mu.Lock()
	current, ok := c.machine.CurrentQuestion()
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := c.SubmitAnswer(ctx, current.ID, value); err != nil {
		return false, err
	}
	return true, nil
}

// FinishSession finalizes the session. The backend is asked to complete
// first; only when it accepts does the local machine transition to
// completed, so a remote rejection never leaves the client in a completed
// state the server disagrees with.
func (c *Client) FinishSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	snapshot := c.machine.Session()
	canFinish := c.machine.CanFinish()
	c.mu.Unlock()

	if snapshot == nil {
		return "", entity.ErrNoActiveSession
	}
	if snapshot.Status == entity.SessionStatusError {
		return "", entity.ErrSessionFailed
	}
	if !canFinish {
		return "", entity.ErrSessionNotFinishable
	}

	var resp entity.CompleteSessionResponse
	err := c.connector.DoRequest(ctx, http.MethodPost,
		"/clarification/sessions/"+snapshot.ID+"/complete", nil, &resp)
	if err != nil {
		return "", fmt.Errorf("complete session: %w", err)
	}

	c.mu.Lock()
	c.machine.Complete()
	c.mu.Unlock()

	return resp.PlanID, nil
}

// Abandon deletes the session on the backend and resets local state.
func (c *Client) Abandon(ctx context.Context) error {
	c.mu.Lock()
	snapshot := c.machine.Session()
	c.mu.Unlock()

	if snapshot == nil {
		return entity.ErrNoActiveSession
	}

	err := c.connector.DoRequest(ctx, http.MethodDelete,
		"/clarification/sessions/"+snapshot.ID, nil, nil)
	if err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}

	c.closeStream()

	c.mu.Lock()
	c.machine.Reset()
	c.mu.Unlock()

	return nil
}

// Session returns a snapshot of the local session state, or nil when no
// session is active.
func (c *Client) Session() *entity.ClarificationSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Session()
}

// CanFinish reports whether the local state passes the finalization gate.
func (c *Client) CanFinish() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.CanFinish()
}

// Done returns a channel that closes when the question stream has ended.
// Returns nil if no session was started.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Close tears down the stream connection. The local session state stays
// readable afterwards.
func (c *Client) Close() {
	c.closeStream()
}

func (c *Client) closeStream() {
	c.mu.Lock()
	cancel := c.cancel
	body := c.streamBody
	done := c.done
	c.cancel = nil
	c.streamBody = nil
	c.done = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if body != nil {
		body.Close()
	}
	if done != nil {
		<-done
	}
}
