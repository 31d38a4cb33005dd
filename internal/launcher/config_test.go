// internal/launcher/config_test.go
package launcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBuilder(t *testing.T) {
	t.Run("should seed hardened defaults", func(t *testing.T) {
		cfg, err := NewConfig().Executable("/usr/bin/true").Build()
		require.NoError(t, err)

		assert.Equal(t, Headless, cfg.Headless)
		assert.True(t, cfg.Sandbox)
		assert.True(t, cfg.IgnoreHTTPSErrors)
		assert.True(t, cfg.IgnoreInvalidMessages)
		assert.Equal(t, DefaultLaunchTimeout, cfg.LaunchTimeout)
		assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
		require.NotNil(t, cfg.Viewport)
		assert.Equal(t, 800, cfg.Viewport.Width)
		assert.Equal(t, 600, cfg.Viewport.Height)
		assert.Equal(t, "/usr/bin/true", cfg.Executable)
	})

	t.Run("should apply overrides", func(t *testing.T) {
		cfg, err := NewConfig().
			Executable("/opt/chrome").
			WithHead().
			NoSandbox().
			Incognito().
			Hide().
			Port(9222).
			UserDataDir("/tmp/profile").
			WindowSize(1280, 720).
			LaunchTimeout(5 * time.Second).
			Env("TZ", "UTC").
			Build()
		require.NoError(t, err)

		assert.Equal(t, Headful, cfg.Headless)
		assert.False(t, cfg.Sandbox)
		assert.True(t, cfg.Incognito)
		assert.True(t, cfg.Hidden)
		assert.Equal(t, 9222, cfg.Port)
		assert.Equal(t, "/tmp/profile", cfg.UserDataDir)
		assert.Equal(t, &[2]int{1280, 720}, cfg.WindowSize)
		assert.Equal(t, 5*time.Second, cfg.LaunchTimeout)
		assert.Equal(t, "UTC", cfg.ProcessEnvs["TZ"])
	})
}

func TestConfigBuildArgs(t *testing.T) {
	base := func() Config {
		return Config{Headless: Headful, Sandbox: true}
	}

	t.Run("should include the default set unless disabled", func(t *testing.T) {
		tokens := base().BuildArgs()
		assert.Contains(t, tokens, "--disable-background-networking")
		assert.Contains(t, tokens, "--no-first-run")

		cfg := base()
		cfg.DisableDefaultArgs = true
		tokens = cfg.BuildArgs()
		assert.NotContains(t, tokens, "--disable-background-networking")
		assert.NotContains(t, tokens, "--no-first-run")
	})

	t.Run("should inject the debugging port only when absent", func(t *testing.T) {
		cfg := base()
		cfg.Port = 9333
		assert.Contains(t, cfg.BuildArgs(), "--remote-debugging-port=9333")

		cfg.Args = []Arg{ValueArg("remote-debugging-port", 9444)}
		tokens := cfg.BuildArgs()
		assert.Contains(t, tokens, "--remote-debugging-port=9444")
		assert.NotContains(t, tokens, "--remote-debugging-port=9333")
	})

	t.Run("should disable extensions when none are loaded", func(t *testing.T) {
		tokens := base().BuildArgs()
		assert.Contains(t, tokens, "--disable-extensions")

		cfg := base()
		cfg.Extensions = []string{"/ext/a", "/ext/b"}
		tokens = cfg.BuildArgs()
		assert.NotContains(t, tokens, "--disable-extensions")
		assert.Contains(t, tokens, "--load-extension=/ext/a,/ext/b")
	})

	t.Run("should always pin a user data directory", func(t *testing.T) {
		tokens := base().BuildArgs()
		fallback := filepath.Join(os.TempDir(), "chaser-runner")
		assert.Contains(t, tokens, "--user-data-dir="+fallback)

		cfg := base()
		cfg.UserDataDir = "/data/profile"
		assert.Contains(t, cfg.BuildArgs(), "--user-data-dir=/data/profile")
	})

	t.Run("should emit both sandbox flags when disabled", func(t *testing.T) {
		cfg := base()
		cfg.Sandbox = false
		tokens := cfg.BuildArgs()
		assert.Contains(t, tokens, "--no-sandbox")
		assert.Contains(t, tokens, "--disable-setuid-sandbox")

		tokens = base().BuildArgs()
		assert.NotContains(t, tokens, "--no-sandbox")
	})

	t.Run("should emit the selected headless variant", func(t *testing.T) {
		cfg := base()
		cfg.Headless = Headless
		tokens := cfg.BuildArgs()
		assert.Contains(t, tokens, "--headless")
		assert.Contains(t, tokens, "--hide-scrollbars")
		assert.Contains(t, tokens, "--mute-audio")

		cfg.Headless = HeadlessNew
		tokens = cfg.BuildArgs()
		assert.Contains(t, tokens, "--headless=new")

		cfg.Headless = Headful
		tokens = cfg.BuildArgs()
		assert.NotContains(t, tokens, "--headless")
		assert.NotContains(t, tokens, "--headless=new")
	})

	t.Run("should emit window size and incognito", func(t *testing.T) {
		cfg := base()
		cfg.WindowSize = &[2]int{1920, 1080}
		cfg.Incognito = true
		tokens := cfg.BuildArgs()
		assert.Contains(t, tokens, "--window-size=1920,1080")
		assert.Contains(t, tokens, "--incognito")
	})

	t.Run("should suppress the automation marker when hidden", func(t *testing.T) {
		cfg := base()
		cfg.Hidden = true
		assert.Contains(t, cfg.BuildArgs(), "--disable-blink-features=AutomationControlled")
	})

	t.Run("should merge the https-first opt-out into existing disabled features", func(t *testing.T) {
		cfg := Config{Headless: Headful, Sandbox: true, DisableHTTPSFirst: true}
		tokens := cfg.BuildArgs()
		// TranslateUI comes from the default set; the opt-out appends to it.
		assert.Contains(t, tokens, "--disable-features=TranslateUI,HttpsUpgrades,HttpsFirstBalancedModeAutoEnable")
	})
}
