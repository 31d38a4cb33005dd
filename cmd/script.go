// File: cmd/script.go
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/chaser/internal/config"
)

// newScriptCmd creates the `script` command, which renders the stealth
// bootstrap script for the configured fingerprint profile. Useful for
// injecting through an existing driver via Page.addScriptToEvaluateOnNewDocument.
func newScriptCmd() *cobra.Command {
	scriptCmd := &cobra.Command{
		Use:   "script",
		Short: "Prints the stealth bootstrap script for the configured profile",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("profile.os", cmd.Flags().Lookup("os")); err != nil {
				return err
			}
			if err := viper.BindPFlag("profile.gpu", cmd.Flags().Lookup("gpu")); err != nil {
				return err
			}
			return viper.BindPFlag("profile.chrome_version", cmd.Flags().Lookup("chrome-version"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			profile, err := buildProfile(cfg.Profile())
			if err != nil {
				return err
			}
			cmd.Println(profile.Script())
			return nil
		},
	}

	scriptCmd.Flags().String("os", "linux", "fingerprint OS: windows, macos-intel, macos-arm, linux")
	scriptCmd.Flags().String("gpu", "", "GPU preset, e.g. nvidia-rtx-3080 (per-OS default when empty)")
	scriptCmd.Flags().Int("chrome-version", 0, "Chrome major version to impersonate")

	return scriptCmd
}

func init() {
	rootCmd.AddCommand(newScriptCmd())
}
