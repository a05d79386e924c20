// Package refresh coordinates access credential renewal. When any number of
// concurrent calls fail authentication, exactly one refresh request is sent.
// The others wait in a FIFO queue, are handed the new credential in that
// order and replay concurrently, each in its own goroutine.
package refresh

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/client/credentials"
	"github.com/dmitrijs2005/gophgate/internal/client/transport"
	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
)

const (
	DefaultRefreshTimeout = 15 * time.Second
	DefaultWaitTimeout    = 30 * time.Second
)

type State int

const (
	StateIdle State = iota
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRefreshing:
		return "REFRESHING"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminator ends the session. It is satisfied by *session.Terminator.
type Terminator interface {
	Terminate(ctx context.Context) error
}

// ReplayFunc re-issues a failed call with the given access credential.
type ReplayFunc func(ctx context.Context, access string) (*transport.Response, error)

// Call is an operation that failed authentication.
//
// Credential is the access credential the call was sent with. Err is the
// failure it got. When Replay is nil the Request is re-sent through the
// coordinator's transport with the Authorization header replaced.
type Call struct {
	Request    transport.Request
	Credential string
	Err        error
	Replay     ReplayFunc
}

type Options struct {
	AuthURI        string
	TokenPath      string
	ClientID       string
	RefreshTimeout time.Duration
	WaitTimeout    time.Duration
}

// RefreshURL is the refresh endpoint derived from o.
func (o Options) RefreshURL() string {
	return strings.TrimRight(o.AuthURI, "/") + o.TokenPath
}

// outcome is what a waiter is released with: the new credential or the
// refresh error.
type outcome struct {
	access string
	err    error
}

type pendingCall struct {
	call Call
	done chan outcome
}

type Coordinator struct {
	store      credentials.Store
	transport  transport.Transport
	terminator Terminator
	opts       Options
	refreshURL string
	logger     logging.Logger

	mu       sync.Mutex
	inFlight bool
	queue    []*pendingCall
	// generation counts finished refresh attempts.
	generation uint64
}

func NewCoordinator(store credentials.Store, tr transport.Transport, term Terminator, opts Options, l logging.Logger) *Coordinator {
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = DefaultRefreshTimeout
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	return &Coordinator{
		store:      store,
		transport:  tr,
		terminator: term,
		opts:       opts,
		refreshURL: opts.RefreshURL(),
		logger:     l.With("module", "refresh"),
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return StateRefreshing
	}
	return StateIdle
}

// Queued reports how many calls are waiting on the current refresh.
func (c *Coordinator) Queued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// IsRefreshRequest reports whether r targets the refresh endpoint.
func (c *Coordinator) IsRefreshRequest(r transport.Request) bool {
	return sameEndpoint(r.URL, c.refreshURL)
}

// HandleAuthFailure resolves a call that failed authentication. It either
// performs the refresh itself or waits for the one in progress, then returns
// the result of replaying the call with the new credential.
func (c *Coordinator) HandleAuthFailure(ctx context.Context, call Call) (*transport.Response, error) {
	if c.IsRefreshRequest(call.Request) {
		c.logger.Warn(ctx, "refresh endpoint rejected credentials, ending session")
		c.terminate(ctx)
		if call.Err == nil {
			return nil, ErrSessionTerminated
		}
		return nil, fmt.Errorf("%w: %w", ErrSessionTerminated, call.Err)
	}

	for {
		c.mu.Lock()
		if c.inFlight {
			p := &pendingCall{call: call, done: make(chan outcome, 1)}
			c.queue = append(c.queue, p)
			n := len(c.queue)
			c.mu.Unlock()
			c.logger.Debug(ctx, "waiting for refresh", "queued", n)
			return c.wait(ctx, p)
		}
		gen := c.generation
		c.mu.Unlock()

		// Read outside the lock; a store may be remote.
		current, err := c.store.Get(ctx, credentials.AccessTokenKey)

		c.mu.Lock()
		if c.inFlight || c.generation != gen {
			// A refresh started or finished during the read.
			c.mu.Unlock()
			continue
		}
		if err == nil && current != "" && call.Credential != "" && current != call.Credential {
			c.mu.Unlock()
			c.logger.Debug(ctx, "credential already renewed, replaying")
			return c.replay(ctx, call, current)
		}

		c.inFlight = true
		c.mu.Unlock()

		return c.lead(ctx, call)
	}
}

func (c *Coordinator) wait(ctx context.Context, p *pendingCall) (*transport.Response, error) {
	timer := time.NewTimer(c.opts.WaitTimeout)
	defer timer.Stop()

	select {
	case o := <-p.done:
		return c.resume(ctx, p.call, o)
	case <-ctx.Done():
		if c.dequeue(p) {
			return nil, ctx.Err()
		}
	case <-timer.C:
		if c.dequeue(p) {
			c.logger.Warn(ctx, "gave up waiting for refresh", "timeout", c.opts.WaitTimeout)
			return nil, ErrWaitTimeout
		}
	}

	// Already released by the leader; the outcome is sent right after.
	o := <-p.done
	if o.err == nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return c.resume(ctx, p.call, o)
}

func (c *Coordinator) resume(ctx context.Context, call Call, o outcome) (*transport.Response, error) {
	if o.err != nil {
		return nil, o.err
	}
	return c.replay(ctx, call, o.access)
}

// dequeue removes p from the queue, reporting whether it was still there.
func (c *Coordinator) dequeue(p *pendingCall) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, q := range c.queue {
		if q == p {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return true
		}
	}
	return false
}

// release resets the state and hands back the calls queued so far.
func (c *Coordinator) release() []*pendingCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	waiters := c.queue
	c.queue = nil
	c.inFlight = false
	c.generation++
	return waiters
}

func (c *Coordinator) lead(ctx context.Context, call Call) (*transport.Response, error) {
	start := time.Now()
	access, err := c.refresh(ctx)
	if err != nil {
		c.logger.Error(ctx, "credential refresh failed", "error", err)
		c.terminate(ctx)
		waiters := c.release()
		for _, p := range waiters {
			p.done <- outcome{err: err}
		}
		return nil, err
	}

	if err := c.store.Set(ctx, credentials.AccessTokenKey, access); err != nil {
		c.logger.Warn(ctx, "failed to store renewed credential", "error", err)
	}

	waiters := c.release()
	c.logger.Info(ctx, "credential refreshed", "waiters", len(waiters), "duration", time.Since(start))

	for _, p := range waiters {
		p.done <- outcome{access: access}
	}
	return c.replay(ctx, call, access)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	ClientID     string `json:"clientId"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (c *Coordinator) refresh(ctx context.Context) (string, error) {
	token, err := c.store.Get(ctx, credentials.RefreshTokenKey)
	if err != nil {
		return "", &RefreshError{Err: fmt.Errorf("failed to read refresh credential: %w", err)}
	}
	if token == "" {
		return "", ErrNoRefreshCredential
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.RefreshTimeout)
	defer cancel()

	resp, err := c.transport.Call(rctx, transport.Request{
		Method:  http.MethodPost,
		URL:     c.refreshURL,
		Body:    refreshRequest{RefreshToken: token, ClientID: c.opts.ClientID},
		Headers: map[string]string{common.ContentTypeHeader: common.ContentTypeJSON},
	})
	if err != nil {
		return "", &RefreshError{Err: err}
	}

	var body refreshResponse
	if err := resp.JSON(&body); err != nil {
		return "", &RefreshError{Err: err}
	}
	if body.AccessToken == "" {
		return "", &RefreshError{Err: ErrEmptyAccessToken}
	}
	return body.AccessToken, nil
}

func (c *Coordinator) replay(ctx context.Context, call Call, access string) (*transport.Response, error) {
	if call.Replay != nil {
		return call.Replay(ctx, access)
	}
	req := call.Request.Clone()
	for k := range req.Headers {
		if strings.EqualFold(k, common.AuthorizationHeader) {
			delete(req.Headers, k)
		}
	}
	req.Headers[common.AuthorizationHeader] = common.BearerValue(access)
	return c.transport.Call(ctx, req)
}

func (c *Coordinator) terminate(ctx context.Context) {
	if c.terminator == nil {
		return
	}
	if err := c.terminator.Terminate(context.WithoutCancel(ctx)); err != nil {
		c.logger.Error(ctx, "failed to terminate session", "error", err)
	}
}

func sameEndpoint(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) &&
		strings.EqualFold(ua.Host, ub.Host) &&
		strings.TrimRight(ua.Path, "/") == strings.TrimRight(ub.Path, "/")
}
