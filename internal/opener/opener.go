// Package opener reveals a directory in the desktop file manager.
package opener

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// ErrNotDir is returned when the target is missing or not a directory.
var ErrNotDir = errors.New("not a directory")

// Opener launches the platform file manager.
type Opener struct {
	goos string
	run  func(ctx context.Context, name string, args ...string) error
}

// New returns an Opener for the running platform.
func New() *Opener {
	return &Opener{goos: runtime.GOOS, run: start}
}

// Open shows dir in the file manager. It returns once the helper is started.
func (o *Opener) Open(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDir, dir)
	}
	name, args := Command(o.goos, dir)
	if err := o.run(ctx, name, args...); err != nil {
		return fmt.Errorf("opening %s with %s: %w", dir, name, err)
	}
	return nil
}

// Command returns the helper and arguments used on goos.
func Command(goos, dir string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{dir}
	case "windows":
		return "explorer", []string{dir}
	default:
		return "xdg-open", []string{dir}
	}
}

func start(ctx context.Context, name string, args ...string) error {
	// The helper outlives the request that asked for it.
	cmd := exec.CommandContext(context.WithoutCancel(ctx), name, args...) // #nosec G204 -- fixed helper, dir argument
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
