// internal/launcher/launcher.go
package launcher

import (
	"time"

	"go.uber.org/zap"
)

// Launch spawns the browser described by cfg and resolves its DevTools
// WebSocket URL. On any failure after the spawn the child is killed and
// reaped synchronously before the error is returned, so callers never have to
// clean up a partially launched process themselves.
func Launch(cfg Config, logger *zap.Logger) (*Process, string, error) {
	log := logger.Named("launcher")

	timeout := cfg.LaunchTimeout
	if timeout <= 0 {
		timeout = DefaultLaunchTimeout
	}

	log.Debug("Spawning browser process.",
		zap.String("executable", cfg.Executable),
		zap.Strings("args", cfg.BuildArgs()),
	)

	start := time.Now()
	proc, err := cfg.Spawn()
	if err != nil {
		return nil, "", err
	}

	wsURL, err := ResolveWebSocketURL(proc, timeout, log)
	if err != nil {
		if reapErr := proc.Reap(); reapErr != nil {
			log.Error("Failed to clean up browser process after launch failure; it may still be running.",
				zap.Int("pid", proc.PID()), zap.Error(reapErr))
		}
		return nil, "", err
	}

	log.Info("Browser launched.",
		zap.Int("pid", proc.PID()),
		zap.String("devtools_url", wsURL),
		zap.Duration("took", time.Since(start)),
	)
	return proc, wsURL, nil
}
