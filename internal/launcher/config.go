// internal/launcher/config.go
package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// DefaultLaunchTimeout bounds how long a launch waits for the browser to
// announce its DevTools endpoint.
const DefaultLaunchTimeout = 20 * time.Second

// DefaultRequestTimeout is the default timeout for individual protocol
// commands issued after the session is live.
const DefaultRequestTimeout = 30 * time.Second

// HeadlessMode selects how the browser window is (not) shown.
type HeadlessMode int

const (
	// Headless runs the legacy headless implementation.
	Headless HeadlessMode = iota
	// Headful shows a regular browser window.
	Headful
	// HeadlessNew runs the newer headless implementation, which is harder to
	// distinguish from a regular browser.
	HeadlessNew
)

// Viewport describes the emulated page viewport. It is forwarded to the
// protocol handler verbatim; the launcher itself only decides window size.
type Viewport struct {
	Width             int
	Height            int
	DeviceScaleFactor float64
	Mobile            bool
	Landscape         bool
}

// Config is a frozen snapshot of everything needed to spawn a browser
// process. Build one through ConfigBuilder; it is never mutated afterwards.
type Config struct {
	Headless              HeadlessMode
	Sandbox               bool
	WindowSize            *[2]int
	Port                  int
	Executable            string
	Extensions            []string
	ProcessEnvs           map[string]string
	UserDataDir           string
	Incognito             bool
	LaunchTimeout         time.Duration
	RequestTimeout        time.Duration
	IgnoreHTTPSErrors     bool
	IgnoreInvalidMessages bool
	DisableHTTPSFirst     bool
	Viewport              *Viewport
	Args                  []Arg
	DisableDefaultArgs    bool
	Hidden                bool
}

// ConfigBuilder accumulates launch settings and produces an immutable Config.
type ConfigBuilder struct {
	cfg        Config
	executable string
}

// NewConfig returns a builder seeded with the defaults: legacy headless,
// sandboxed, OS-assigned debug port, auto-detected executable, 20s launch
// timeout and a default 800x600 viewport.
func NewConfig() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: Config{
			Headless:              Headless,
			Sandbox:               true,
			LaunchTimeout:         DefaultLaunchTimeout,
			RequestTimeout:        DefaultRequestTimeout,
			IgnoreHTTPSErrors:     true,
			IgnoreInvalidMessages: true,
			Viewport:              &Viewport{Width: 800, Height: 600},
		},
	}
}

func (b *ConfigBuilder) WindowSize(width, height int) *ConfigBuilder {
	b.cfg.WindowSize = &[2]int{width, height}
	return b
}

func (b *ConfigBuilder) NoSandbox() *ConfigBuilder {
	b.cfg.Sandbox = false
	return b
}

func (b *ConfigBuilder) WithHead() *ConfigBuilder {
	b.cfg.Headless = Headful
	return b
}

func (b *ConfigBuilder) NewHeadlessMode() *ConfigBuilder {
	b.cfg.Headless = HeadlessNew
	return b
}

func (b *ConfigBuilder) HeadlessMode(mode HeadlessMode) *ConfigBuilder {
	b.cfg.Headless = mode
	return b
}

func (b *ConfigBuilder) Incognito() *ConfigBuilder {
	b.cfg.Incognito = true
	return b
}

func (b *ConfigBuilder) RespectHTTPSErrors() *ConfigBuilder {
	b.cfg.IgnoreHTTPSErrors = false
	return b
}

// SurfaceInvalidMessages makes the protocol handler report malformed protocol
// traffic instead of dropping it.
func (b *ConfigBuilder) SurfaceInvalidMessages() *ConfigBuilder {
	b.cfg.IgnoreInvalidMessages = false
	return b
}

// Port fixes the remote debugging port. Zero (the default) lets the OS assign
// an ephemeral port which the browser reports back on its diagnostic stream.
func (b *ConfigBuilder) Port(port int) *ConfigBuilder {
	b.cfg.Port = port
	return b
}

func (b *ConfigBuilder) LaunchTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.LaunchTimeout = d
	return b
}

func (b *ConfigBuilder) RequestTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.RequestTimeout = d
	return b
}

// Viewport overrides the emulated viewport. Passing nil disables viewport
// emulation so pages fill whatever window the browser opens.
func (b *ConfigBuilder) Viewport(v *Viewport) *ConfigBuilder {
	b.cfg.Viewport = v
	return b
}

func (b *ConfigBuilder) UserDataDir(dir string) *ConfigBuilder {
	b.cfg.UserDataDir = dir
	return b
}

func (b *ConfigBuilder) Executable(path string) *ConfigBuilder {
	b.executable = path
	return b
}

// Extension adds a path to an unpacked extension directory. Note that Chrome
// refuses to load extensions in headless mode.
func (b *ConfigBuilder) Extension(path string) *ConfigBuilder {
	b.cfg.Extensions = append(b.cfg.Extensions, path)
	return b
}

func (b *ConfigBuilder) Env(key, value string) *ConfigBuilder {
	if b.cfg.ProcessEnvs == nil {
		b.cfg.ProcessEnvs = make(map[string]string)
	}
	b.cfg.ProcessEnvs[key] = value
	return b
}

func (b *ConfigBuilder) Arg(arg Arg) *ConfigBuilder {
	b.cfg.Args = append(b.cfg.Args, arg)
	return b
}

func (b *ConfigBuilder) Args(args ...Arg) *ConfigBuilder {
	b.cfg.Args = append(b.cfg.Args, args...)
	return b
}

// DisableDefaultArgs drops the built-in default argument set so the caller
// controls the complete command line.
func (b *ConfigBuilder) DisableDefaultArgs() *ConfigBuilder {
	b.cfg.DisableDefaultArgs = true
	return b
}

// DisableHTTPSFirst turns off Chrome's HTTPS upgrade features, which rewrite
// plain http navigations.
func (b *ConfigBuilder) DisableHTTPSFirst() *ConfigBuilder {
	b.cfg.DisableHTTPSFirst = true
	return b
}

// Hide passes the flag that keeps Blink from exposing the automation marker
// (navigator.webdriver).
func (b *ConfigBuilder) Hide() *ConfigBuilder {
	b.cfg.Hidden = true
	return b
}

// Build freezes the configuration. When no executable was set explicitly, a
// suitable Chrome or Chromium binary is auto-detected.
func (b *ConfigBuilder) Build() (Config, error) {
	cfg := b.cfg
	if b.executable != "" {
		cfg.Executable = b.executable
	} else {
		exe, err := DefaultExecutable()
		if err != nil {
			return Config{}, err
		}
		cfg.Executable = exe
	}
	return cfg, nil
}

// DefaultArgs are passed to the browser binary unless disabled. Derived from
// the argument set puppeteer ships for stable automation:
// https://github.com/puppeteer/puppeteer/blob/4846b8723cf20d3551c0d755df394cc5e0c82a94/src/node/Launcher.ts#L157
var DefaultArgs = []Arg{
	KeyArg("disable-background-networking"),
	ValuesArg("enable-features", "NetworkService", "NetworkServiceInProcess"),
	KeyArg("disable-background-timer-throttling"),
	KeyArg("disable-backgrounding-occluded-windows"),
	KeyArg("disable-breakpad"),
	KeyArg("disable-client-side-phishing-detection"),
	KeyArg("disable-component-extensions-with-background-pages"),
	KeyArg("disable-default-apps"),
	KeyArg("disable-dev-shm-usage"),
	ValuesArg("disable-features", "TranslateUI"),
	KeyArg("disable-hang-monitor"),
	KeyArg("disable-ipc-flooding-protection"),
	KeyArg("disable-popup-blocking"),
	KeyArg("disable-prompt-on-repost"),
	KeyArg("disable-renderer-backgrounding"),
	KeyArg("disable-sync"),
	ValuesArg("force-color-profile", "srgb"),
	KeyArg("metrics-recording-only"),
	KeyArg("no-first-run"),
	KeyArg("enable-automation"),
	ValuesArg("password-store", "basic"),
	KeyArg("use-mock-keychain"),
	ValuesArg("enable-blink-features", "IdleDetection"),
	ValuesArg("lang", "en_US"),
}

// BuildArgs materializes the full deduplicated command line for this config.
// Construction order matters: defaults first (unless disabled), then caller
// args, then the conditional flags each config field contributes.
func (c Config) BuildArgs() []string {
	args := NewArguments()

	if !c.DisableDefaultArgs {
		args.AddAll(DefaultArgs...)
	}
	args.AddAll(c.Args...)

	if !args.Has("remote-debugging-port") {
		args.Add(ValueArg("remote-debugging-port", c.Port))
	}

	// Extensions and headless automation are mutually exclusive by browser
	// policy; when none are configured, disable them outright.
	if len(c.Extensions) == 0 {
		args.Add(KeyArg("disable-extensions"))
	} else {
		for _, ext := range c.Extensions {
			args.Add(ValueArg("load-extension", ext))
		}
	}

	// Always pin a user data directory. Without one the browser would
	// silently inherit the system profile between runs.
	if c.UserDataDir != "" {
		args.Add(ValueArg("user-data-dir", c.UserDataDir))
	} else {
		args.Add(ValueArg("user-data-dir", filepath.Join(os.TempDir(), "chaser-runner")))
	}

	if c.WindowSize != nil {
		args.Add(ValuesArg("window-size",
			fmt.Sprint(c.WindowSize[0]), fmt.Sprint(c.WindowSize[1])))
	}

	if !c.Sandbox {
		args.AddAll(KeyArg("no-sandbox"), KeyArg("disable-setuid-sandbox"))
	}

	switch c.Headless {
	case Headful:
	case Headless:
		args.AddAll(KeyArg("headless"), KeyArg("hide-scrollbars"), KeyArg("mute-audio"))
	case HeadlessNew:
		args.AddAll(ValueArg("headless", "new"), KeyArg("hide-scrollbars"), KeyArg("mute-audio"))
	}

	if c.Incognito {
		args.Add(KeyArg("incognito"))
	}

	if c.Hidden {
		args.Add(ValueArg("disable-blink-features", "AutomationControlled"))
	}

	if c.DisableHTTPSFirst {
		args.Add(ValuesArg("disable-features", "HttpsUpgrades", "HttpsFirstBalancedModeAutoEnable"))
	}

	return args.Build()
}

// Spawn launches the browser binary with the materialized argument list. The
// child's stderr is piped for the endpoint discovery race; stdout and stdin
// are inherited untouched.
func (c Config) Spawn() (*Process, error) {
	cmd := exec.Command(c.Executable, c.BuildArgs()...)

	if len(c.ProcessEnvs) > 0 {
		cmd.Env = os.Environ()
		for k, v := range c.ProcessEnvs {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	// A plain os.Pipe instead of cmd.StderrPipe: the read side must stay
	// usable while another goroutine waits on the process, and StderrPipe is
	// closed by Wait.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, err
	}
	// The child holds its own copy of the write end.
	pw.Close()

	return newProcess(cmd, pr), nil
}
