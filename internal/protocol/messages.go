// internal/protocol/messages.go
//
// The wire-level CDP multiplexer lives outside this module; sessions talk to
// it through the message union defined here. Every request variant carries
// its own single-use reply channel, so any number of callers can issue
// commands concurrently without shared mutable state. Event registration is
// the one exception: it yields a continuous stream.
package protocol

import (
	"encoding/json"
	"errors"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/target"
)

var (
	// ErrSessionLost indicates the protocol handler side has gone away; the
	// outbound channel or a reply channel was closed under us.
	ErrSessionLost = errors.New("protocol handler is gone, session lost")
	// ErrNotFound indicates an operation referenced an unknown page or target.
	ErrNotFound = errors.New("target not found")
	// ErrNoResponse indicates the version probe of an attach endpoint failed.
	ErrNoResponse = errors.New("no response from browser endpoint")
	// ErrInvalidMessage indicates malformed protocol traffic. The handler
	// suppresses it unless the session was configured to surface it.
	ErrInvalidMessage = errors.New("invalid protocol message")
)

// Message is one outbound request to the protocol handler.
type Message interface {
	message()
}

// Command executes an arbitrary protocol method.
type Command struct {
	Method string
	Params json.RawMessage
	Reply  chan<- CommandReply
}

// CommandReply carries the raw result of a Command.
type CommandReply struct {
	Result json.RawMessage
	Err    error
}

// CreatePage asks the handler to create a new page target, optionally inside
// a specific browser context.
type CreatePage struct {
	URL       string
	ContextID cdp.BrowserContextID
	Reply     chan<- PageReply
}

// PageReply resolves a single page target.
type PageReply struct {
	Target *target.Info
	Err    error
}

// GetPages enumerates all page targets the handler tracks.
type GetPages struct {
	Reply chan<- PagesReply
}

// PagesReply lists page targets.
type PagesReply struct {
	Targets []*target.Info
	Err     error
}

// GetPage fetches one page target by id.
type GetPage struct {
	TargetID target.ID
	Reply    chan<- PageReply
}

// FetchTargets asks the handler to fetch targets that already existed before
// the connection and start tracking them.
type FetchTargets struct {
	Reply chan<- PagesReply
}

// SetCookies installs cookies in the browser.
type SetCookies struct {
	Cookies []*network.CookieParam
	Reply   chan<- error
}

// GetCookies retrieves all browser cookies.
type GetCookies struct {
	Reply chan<- CookiesReply
}

// CookiesReply lists browser cookies.
type CookiesReply struct {
	Cookies []*network.Cookie
	Err     error
}

// ClearCookies removes all browser cookies.
type ClearCookies struct {
	Reply chan<- error
}

// AddEventListener subscribes to protocol events of one kind. Events keep
// flowing on the channel until the session closes.
type AddEventListener struct {
	Method string
	Events chan<- *Event
}

// Event is one protocol event delivered to a listener.
type Event struct {
	Method string
	Params json.RawMessage
}

// InsertContext tells the handler a new browser context is active so pages
// created afterwards inherit it.
type InsertContext struct {
	ContextID cdp.BrowserContextID
}

// DisposeContext tells the handler a browser context (and every page inside
// it) is gone.
type DisposeContext struct {
	ContextID cdp.BrowserContextID
}

// CloseBrowser requests a graceful browser shutdown.
type CloseBrowser struct {
	Reply chan<- error
}

func (Command) message()          {}
func (CreatePage) message()       {}
func (GetPages) message()         {}
func (GetPage) message()          {}
func (FetchTargets) message()     {}
func (SetCookies) message()       {}
func (GetCookies) message()       {}
func (ClearCookies) message()     {}
func (AddEventListener) message() {}
func (InsertContext) message()    {}
func (DisposeContext) message()   {}
func (CloseBrowser) message()     {}
