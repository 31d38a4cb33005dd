// internal/browser/session.go
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/target"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chaser/internal/launcher"
	"github.com/xkilldash9x/chaser/internal/protocol"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// State tracks where a session is in its lifecycle.
type State int32

const (
	Disconnected State = iota
	Connecting
	Live
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Live:
		return "live"
	case Closing:
		return "closing"
	default:
		return "closed"
	}
}

// outboundBuffer sizes the channel to the protocol handler. Delivery order is
// preserved either way; the buffer only decouples bursts.
const outboundBuffer = 16

// Session owns one browser: the spawned process (when launched locally), the
// discovered DevTools endpoint, the outbound channel to the external protocol
// handler and the active browser context. All work after a successful launch
// or connect flows through opaque messages on the outbound channel.
type Session struct {
	id     string
	logger *zap.Logger

	// cfg and proc are nil when the session attached to an existing browser.
	cfg  *launcher.Config
	proc *launcher.Process

	wsURL string
	out   chan protocol.Message

	state atomic.Int32

	mu        sync.RWMutex
	contextID cdp.BrowserContextID

	requestTimeout time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// Launch spawns a browser per cfg, resolves its DevTools endpoint and returns
// the live session together with the receive side of its outbound message
// channel. The caller wires that channel into its protocol handler and drives
// it; no message is emitted until the caller invokes session operations.
//
// Any failure during the connecting phase reaps the child before returning,
// so callers never have to clean up a partially launched process.
func Launch(cfg launcher.Config, logger *zap.Logger) (*Session, <-chan protocol.Message, error) {
	s := newSession(logger)
	s.cfg = &cfg
	if cfg.RequestTimeout > 0 {
		s.requestTimeout = cfg.RequestTimeout
	}
	s.state.Store(int32(Connecting))

	proc, wsURL, err := launcher.Launch(cfg, s.logger)
	if err != nil {
		s.state.Store(int32(Closed))
		return nil, nil, err
	}
	s.proc = proc
	s.wsURL = wsURL
	s.state.Store(int32(Live))

	// A session dropped without Close must not leak the child. The finalizer
	// never blocks: it signals the kill and the process reaper collects the
	// exit in the background.
	runtime.SetFinalizer(s, finalizeSession)

	return s, s.out, nil
}

func newSession(logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:             id,
		logger:         logger.Named("session").With(zap.String("session_id", id)),
		out:            make(chan protocol.Message, outboundBuffer),
		requestTimeout: launcher.DefaultRequestTimeout,
		done:           make(chan struct{}),
	}
}

func finalizeSession(s *Session) {
	if s.proc == nil {
		return
	}
	if _, exited := s.proc.TryWait(); exited {
		return
	}
	s.logger.Warn("Session was dropped without Close; killing the browser process in the background. " +
		"Call Close (or Kill) explicitly to control shutdown.")
	if err := s.proc.Kill(); err != nil {
		s.logger.Warn("Failed to kill dropped browser process; it may keep running.",
			zap.Int("pid", s.proc.PID()), zap.Error(err))
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State reports the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// WebSocketAddress returns the DevTools endpoint this session is attached to.
func (s *Session) WebSocketAddress() string { return s.wsURL }

// Config returns the launch configuration, or nil when the session attached
// to an already running browser.
func (s *Session) Config() *launcher.Config { return s.cfg }

// IsIncognito reports whether pages created now run in an incognito context,
// either because the browser was launched incognito or because an incognito
// context is active.
func (s *Session) IsIncognito() bool {
	if s.cfg != nil && s.cfg.Incognito {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contextID != ""
}

// send delivers one message to the protocol handler, honoring the context and
// session shutdown.
func (s *Session) send(ctx context.Context, msg protocol.Message) error {
	// Refuse deterministically once closed; the buffered channel might still
	// accept the message otherwise.
	select {
	case <-s.done:
		return protocol.ErrSessionLost
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case s.out <- msg:
		return nil
	case <-s.done:
		return protocol.ErrSessionLost
	case <-ctx.Done():
		return ctx.Err()
	}
}

// await blocks on a single-use reply channel. A closed reply channel means
// the handler dropped the call, which surfaces as a lost session.
func await[T any](ctx context.Context, s *Session, reply <-chan T) (T, error) {
	var zero T
	timer := time.NewTimer(s.requestTimeout)
	defer timer.Stop()
	select {
	case v, ok := <-reply:
		if !ok {
			return zero, protocol.ErrSessionLost
		}
		return v, nil
	case <-timer.C:
		return zero, fmt.Errorf("request timed out after %s", s.requestTimeout)
	case <-s.done:
		return zero, protocol.ErrSessionLost
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// unwrapAwait collapses await's (error-value, transport-error) pair for
// messages whose reply channel carries a bare error.
func unwrapAwait(inner error, outer error) error {
	if outer != nil {
		return outer
	}
	return inner
}

// Execute runs an arbitrary protocol method. Params may be nil; when result
// is non-nil the raw response is decoded into it.
func (s *Session) Execute(ctx context.Context, method string, params, result interface{}) error {
	var raw json.RawMessage
	if params != nil {
		encoded, err := jsonAPI.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to encode params for %s: %w", method, err)
		}
		raw = encoded
	}

	reply := make(chan protocol.CommandReply, 1)
	if err := s.send(ctx, protocol.Command{Method: method, Params: raw, Reply: reply}); err != nil {
		return err
	}
	resp, err := await(ctx, s, reply)
	if err != nil {
		return err
	}
	if resp.Err != nil {
		return resp.Err
	}
	if result != nil {
		if err := jsonAPI.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", method, err)
		}
	}
	return nil
}

// VersionInfo mirrors the Browser.getVersion result.
type VersionInfo struct {
	ProtocolVersion string `json:"protocolVersion"`
	Product         string `json:"product"`
	Revision        string `json:"revision"`
	UserAgent       string `json:"userAgent"`
	JSVersion       string `json:"jsVersion"`
}

// Version queries version information from the browser.
func (s *Session) Version(ctx context.Context) (*VersionInfo, error) {
	var info VersionInfo
	if err := s.Execute(ctx, "Browser.getVersion", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// UserAgent returns the browser's default user agent.
func (s *Session) UserAgent(ctx context.Context) (string, error) {
	info, err := s.Version(ctx)
	if err != nil {
		return "", err
	}
	return info.UserAgent, nil
}

// NewPage creates a page target, inside the active browser context if one was
// started.
func (s *Session) NewPage(ctx context.Context, pageURL string) (*target.Info, error) {
	s.mu.RLock()
	contextID := s.contextID
	s.mu.RUnlock()

	reply := make(chan protocol.PageReply, 1)
	if err := s.send(ctx, protocol.CreatePage{URL: pageURL, ContextID: contextID, Reply: reply}); err != nil {
		return nil, err
	}
	resp, err := await(ctx, s, reply)
	if err != nil {
		return nil, err
	}
	return resp.Target, resp.Err
}

// Pages lists all page targets the handler tracks.
func (s *Session) Pages(ctx context.Context) ([]*target.Info, error) {
	reply := make(chan protocol.PagesReply, 1)
	if err := s.send(ctx, protocol.GetPages{Reply: reply}); err != nil {
		return nil, err
	}
	resp, err := await(ctx, s, reply)
	if err != nil {
		return nil, err
	}
	return resp.Targets, resp.Err
}

// GetPage fetches one page target by id. Unknown ids yield
// protocol.ErrNotFound.
func (s *Session) GetPage(ctx context.Context, id target.ID) (*target.Info, error) {
	reply := make(chan protocol.PageReply, 1)
	if err := s.send(ctx, protocol.GetPage{TargetID: id, Reply: reply}); err != nil {
		return nil, err
	}
	resp, err := await(ctx, s, reply)
	if err != nil {
		return nil, err
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Target == nil {
		return nil, protocol.ErrNotFound
	}
	return resp.Target, nil
}

// FetchTargets asks the handler to pick up targets that already existed
// before this session connected. Mostly useful after Connect, which otherwise
// only tracks targets created later.
func (s *Session) FetchTargets(ctx context.Context) ([]*target.Info, error) {
	reply := make(chan protocol.PagesReply, 1)
	if err := s.send(ctx, protocol.FetchTargets{Reply: reply}); err != nil {
		return nil, err
	}
	resp, err := await(ctx, s, reply)
	if err != nil {
		return nil, err
	}
	return resp.Targets, resp.Err
}

// EventListener subscribes to protocol events of one kind. The returned
// channel keeps delivering until the session closes.
func (s *Session) EventListener(ctx context.Context, method string) (<-chan *protocol.Event, error) {
	events := make(chan *protocol.Event, 16)
	if err := s.send(ctx, protocol.AddEventListener{Method: method, Events: events}); err != nil {
		return nil, err
	}
	return events, nil
}

// validateCookieURL rejects cookie URLs locally, before anything is sent to
// the browser: they must be absolute http or https URLs.
func validateCookieURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid cookie url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid cookie url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid cookie url %q: missing host", raw)
	}
	return nil
}

// SetCookies installs the given cookies. Every cookie URL is validated first;
// nothing is sent when any of them is malformed.
func (s *Session) SetCookies(ctx context.Context, cookies []*network.CookieParam) error {
	for _, c := range cookies {
		if c.URL != "" {
			if err := validateCookieURL(c.URL); err != nil {
				return err
			}
		}
	}
	reply := make(chan error, 1)
	if err := s.send(ctx, protocol.SetCookies{Cookies: cookies, Reply: reply}); err != nil {
		return err
	}
	return unwrapAwait(await(ctx, s, reply))
}

// GetCookies returns all browser cookies.
func (s *Session) GetCookies(ctx context.Context) ([]*network.Cookie, error) {
	reply := make(chan protocol.CookiesReply, 1)
	if err := s.send(ctx, protocol.GetCookies{Reply: reply}); err != nil {
		return nil, err
	}
	resp, err := await(ctx, s, reply)
	if err != nil {
		return nil, err
	}
	return resp.Cookies, resp.Err
}

// ClearCookies removes all browser cookies.
func (s *Session) ClearCookies(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := s.send(ctx, protocol.ClearCookies{Reply: reply}); err != nil {
		return err
	}
	return unwrapAwait(await(ctx, s, reply))
}

// StartIncognitoContext creates a new incognito browser context and makes it
// the session's active context: pages created afterwards run inside it and
// share no cookies or cache with the default context. No-op when the browser
// was launched incognito or a context is already active.
func (s *Session) StartIncognitoContext(ctx context.Context) error {
	if s.IsIncognito() {
		return nil
	}
	var result struct {
		BrowserContextID cdp.BrowserContextID `json:"browserContextId"`
	}
	if err := s.Execute(ctx, "Target.createBrowserContext", nil, &result); err != nil {
		return err
	}

	s.mu.Lock()
	s.contextID = result.BrowserContextID
	s.mu.Unlock()

	return s.send(ctx, protocol.InsertContext{ContextID: result.BrowserContextID})
}

// QuitIncognitoContext disposes the active incognito context. All pages that
// were running inside it are invalidated as well.
func (s *Session) QuitIncognitoContext(ctx context.Context) error {
	s.mu.Lock()
	contextID := s.contextID
	s.contextID = ""
	s.mu.Unlock()

	if contextID == "" {
		return nil
	}

	params := struct {
		BrowserContextID cdp.BrowserContextID `json:"browserContextId"`
	}{contextID}
	if err := s.Execute(ctx, "Target.disposeBrowserContext", params, nil); err != nil {
		return err
	}
	return s.send(ctx, protocol.DisposeContext{ContextID: contextID})
}

// Close requests a graceful browser shutdown through the protocol handler and
// marks the session closed. For locally spawned browsers, follow up with Wait
// to collect the process exit.
func (s *Session) Close(ctx context.Context) error {
	s.state.Store(int32(Closing))

	reply := make(chan error, 1)
	closeErr := s.send(ctx, protocol.CloseBrowser{Reply: reply})
	if closeErr == nil {
		closeErr = unwrapAwait(await(ctx, s, reply))
	}

	s.shutdown()
	return closeErr
}

// Kill forcibly terminates a locally spawned browser without asking it to
// shut down, then waits for the process to be reaped. No-op for attached
// sessions. Prefer Close.
func (s *Session) Kill(ctx context.Context) error {
	s.state.Store(int32(Closing))
	defer s.shutdown()

	if s.proc == nil {
		return nil
	}
	if err := s.proc.Kill(); err != nil {
		return err
	}
	_, err := s.proc.Wait(ctx)
	return err
}

// Wait blocks until a locally spawned browser has exited, usually after
// Close. Returns immediately for attached sessions.
func (s *Session) Wait(ctx context.Context) (*os.ProcessState, error) {
	if s.proc == nil {
		return nil, nil
	}
	return s.proc.Wait(ctx)
}

// TryWait reports the exit state of a locally spawned browser if it has
// already exited, without blocking.
func (s *Session) TryWait() (*os.ProcessState, bool) {
	if s.proc == nil {
		return nil, false
	}
	return s.proc.TryWait()
}

func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.state.Store(int32(Closed))
		runtime.SetFinalizer(s, nil)
		s.logger.Debug("Session closed.")
	})
}
