// internal/browser/connect.go
package browser

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/chaser/internal/protocol"
)

// versionInfoTimeout bounds the /json/version probe of Connect.
const versionInfoTimeout = 15 * time.Second

// connectionInfo is the JSON body of the browser's /json/version endpoint.
type connectionInfo struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	UserAgent            string `json:"User-Agent"`
	V8Version            string `json:"V8-Version"`
	WebKitVersion        string `json:"WebKit-Version"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Connect attaches to an already running browser. When url is an http(s) URL
// the WebSocket endpoint is resolved through the /json/version probe first;
// a ws:// URL is used as-is. The session owns no child process in this mode,
// so Close never touches any OS process.
func Connect(ctx context.Context, rawURL string, logger *zap.Logger) (*Session, <-chan protocol.Message, error) {
	s := newSession(logger)
	s.state.Store(int32(Connecting))

	wsURL := rawURL
	if strings.HasPrefix(rawURL, "http") {
		resolved, err := resolveVersionEndpoint(ctx, rawURL)
		if err != nil {
			s.state.Store(int32(Closed))
			return nil, nil, err
		}
		wsURL = resolved
	}

	s.wsURL = wsURL
	s.state.Store(int32(Live))
	s.logger.Info("Attached to existing browser.", zap.String("devtools_url", wsURL))
	return s, s.out, nil
}

// resolveVersionEndpoint probes <url>/json/version and extracts the DevTools
// WebSocket URL from its JSON body. Loopback addresses in that field are
// rewritten to the address that actually answered, so proxies and port
// forwards cannot hand us an unreachable 127.0.0.1.
func resolveVersionEndpoint(ctx context.Context, rawURL string) (string, error) {
	probeURL := rawURL
	if !strings.HasSuffix(probeURL, "/json/version") && !strings.HasSuffix(probeURL, "/json/version/") {
		if !strings.HasSuffix(probeURL, "/") {
			probeURL += "/"
		}
		probeURL += "json/version"
	}

	probeCtx, cancel := context.WithTimeout(ctx, versionInfoTimeout)
	defer cancel()

	var remote net.Addr
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			remote = info.Conn.RemoteAddr()
		},
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(probeCtx, trace), http.MethodGet, probeURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", protocol.ErrNoResponse, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", protocol.ErrNoResponse, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", protocol.ErrNoResponse, err)
	}

	var info connectionInfo
	if err := jsonAPI.Unmarshal(body, &info); err != nil {
		return "", fmt.Errorf("%w: malformed version info: %v", protocol.ErrNoResponse, err)
	}
	if info.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("%w: version info has no webSocketDebuggerUrl", protocol.ErrNoResponse)
	}

	return rewriteLoopbackHost(info.WebSocketDebuggerURL, remote), nil
}

// rewriteLoopbackHost swaps a loopback host in the advertised WebSocket URL
// for the address that actually served the version info. The browser always
// advertises 127.0.0.1 even when reached through a proxy or port forward.
func rewriteLoopbackHost(wsURL string, remote net.Addr) string {
	if remote == nil {
		return wsURL
	}
	host, _, err := net.SplitHostPort(remote.String())
	if err != nil {
		return wsURL
	}
	return strings.Replace(wsURL, "127.0.0.1", host, 1)
}
