package installer

import (
	"context"
	"fmt"
)

// HookFunc is an extra step run before or after the database phase.
// A non-nil error fails the run.
type HookFunc func(ctx context.Context) error

// Hook is a named HookFunc. The name shows up in the failure message.
type Hook struct {
	Name string
	Run  HookFunc
}

// runHooks runs hooks in order and stops at the first failure. Nothing runs
// once the outcome has already failed.
func (i *Installer) runHooks(ctx context.Context, phase string, hooks []Hook, out *Outcome) {
	for n, h := range hooks {
		if out.Status != StatusRunning {
			return
		}

		name := h.Name
		if name == "" {
			name = fmt.Sprintf("%s hook #%d", phase, n+1)
		}

		if h.Run == nil {
			continue
		}

		i.logger.Debug("Running hook", "phase", phase, "hook", name)

		if err := h.Run(ctx); err != nil {
			i.logger.Error("Hook failed", "phase", phase, "hook", name, "err", err)
			out.fail(fmt.Sprintf("Database installation incomplete!\n%s failed: %v", name, err))

			return
		}
	}
}
