// File: cmd/launch.go
package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chaser/internal/browser"
	"github.com/xkilldash9x/chaser/internal/config"
	"github.com/xkilldash9x/chaser/internal/fingerprint"
	"github.com/xkilldash9x/chaser/internal/launcher"
	"github.com/xkilldash9x/chaser/internal/observability"
)

// newLaunchCmd creates and configures the `launch` command.
func newLaunchCmd() *cobra.Command {
	launchCmd := &cobra.Command{
		Use:   "launch",
		Short: "Launches a browser and prints its DevTools WebSocket endpoint",
		Long: `Launches a Chrome/Chromium process with hardened defaults and the
configured fingerprint profile, prints the DevTools WebSocket endpoint and the
stealth bootstrap parameters, then holds the browser open until interrupted.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so CLI flags override the config
			// file and environment.
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.executable", cmd.Flags().Lookup("executable")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.port", cmd.Flags().Lookup("port")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.user_data_dir", cmd.Flags().Lookup("user-data-dir")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.incognito", cmd.Flags().Lookup("incognito")); err != nil {
				return err
			}
			if err := viper.BindPFlag("profile.os", cmd.Flags().Lookup("os")); err != nil {
				return err
			}
			return viper.BindPFlag("profile.locale", cmd.Flags().Lookup("locale"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			profile, err := buildProfile(cfg.Profile())
			if err != nil {
				return err
			}

			launchCfg, err := buildLaunchConfig(cfg.Browser())
			if err != nil {
				return err
			}

			session, msgs, err := browser.Launch(launchCfg, logger)
			if err != nil {
				return fmt.Errorf("failed to launch browser: %w", err)
			}

			// No protocol handler is attached in this mode; drain the channel
			// so session operations in other goroutines could never block.
			go func() {
				for range msgs {
				}
			}()

			cmd.Printf("DevTools endpoint: %s\n", session.WebSocketAddress())
			cmd.Printf("User agent:        %s\n", profile.UserAgent())
			cmd.Printf("Platform:          %s\n", profile.Platform())
			logger.Info("Browser is running; press Ctrl+C to stop.",
				zap.String("devtools_url", session.WebSocketAddress()),
				zap.String("profile", profile.String()))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			stop()

			logger.Info("Shutting down browser.")
			return session.Kill(cmd.Context())
		},
	}

	launchCmd.Flags().Bool("headless", true, "run the browser without a window")
	launchCmd.Flags().String("executable", "", "path to the Chrome/Chromium binary (auto-detected when empty)")
	launchCmd.Flags().Int("port", 0, "remote debugging port (0 lets the OS pick)")
	launchCmd.Flags().String("user-data-dir", "", "browser profile directory")
	launchCmd.Flags().Bool("incognito", false, "launch in incognito mode")
	launchCmd.Flags().String("os", "linux", "fingerprint OS: windows, macos-intel, macos-arm, linux")
	launchCmd.Flags().String("locale", "en-US", "fingerprint locale")

	return launchCmd
}

// buildProfile turns the profile section of the application config into a
// frozen fingerprint profile.
func buildProfile(pc config.ProfileConfig) (fingerprint.Profile, error) {
	osPreset, err := fingerprint.ParseOS(pc.OS)
	if err != nil {
		return fingerprint.Profile{}, err
	}

	b := fingerprint.New(osPreset)
	if pc.ChromeVersion > 0 {
		b.ChromeVersion(pc.ChromeVersion)
	}
	if pc.GPU != "" {
		gpu, err := fingerprint.ParseGPU(pc.GPU)
		if err != nil {
			return fingerprint.Profile{}, err
		}
		b.GPU(gpu)
	}
	if pc.MemoryGB > 0 {
		b.MemoryGB(pc.MemoryGB)
	}
	if pc.CPUCores > 0 {
		b.CPUCores(pc.CPUCores)
	}
	if pc.Locale != "" {
		b.Locale(pc.Locale)
	}
	if pc.Timezone != "" {
		b.Timezone(pc.Timezone)
	}
	if pc.ScreenWidth > 0 && pc.ScreenHeight > 0 {
		b.Screen(pc.ScreenWidth, pc.ScreenHeight)
	}
	return b.Build(), nil
}

// buildLaunchConfig turns the browser section of the application config into
// a frozen launch configuration.
func buildLaunchConfig(bc config.BrowserConfig) (launcher.Config, error) {
	b := launcher.NewConfig()

	switch {
	case !bc.Headless:
		b.WithHead()
	case bc.HeadlessNew:
		b.NewHeadlessMode()
	}
	if bc.Executable != "" {
		b.Executable(bc.Executable)
	}
	if bc.Port != 0 {
		b.Port(bc.Port)
	}
	if bc.UserDataDir != "" {
		b.UserDataDir(bc.UserDataDir)
	}
	if bc.Incognito {
		b.Incognito()
	}
	if !bc.Sandbox {
		b.NoSandbox()
	}
	if bc.Hidden {
		b.Hide()
	}
	if !bc.IgnoreTLSErrors {
		b.RespectHTTPSErrors()
	}
	if bc.DisableHTTPSFirst {
		b.DisableHTTPSFirst()
	}
	if bc.LaunchTimeout > 0 {
		b.LaunchTimeout(bc.LaunchTimeout)
	}
	if bc.RequestTimeout > 0 {
		b.RequestTimeout(bc.RequestTimeout)
	}
	if bc.WindowWidth > 0 && bc.WindowHeight > 0 {
		b.WindowSize(bc.WindowWidth, bc.WindowHeight)
	}
	for _, ext := range bc.Extensions {
		b.Extension(ext)
	}
	for _, raw := range bc.Args {
		arg, err := launcher.ParseArg(raw)
		if err != nil {
			return launcher.Config{}, err
		}
		b.Arg(arg)
	}

	return b.Build()
}

func init() {
	rootCmd.AddCommand(newLaunchCmd())
}
