package drivers

import (
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

var DefaultKernelModules = []string{"w1-gpio", "w1-therm"}

// ModuleLoader runs a single modprobe-like command.
type ModuleLoader func(ctx context.Context, module string) error

func Modprobe(ctx context.Context, module string) error {
	out, err := exec.CommandContext(ctx, "modprobe", module).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "modprobe %s: %s", module, strings.TrimSpace(string(out)))
	}
	return nil
}

// LoadKernelModules loads every module in order and keeps going on failure;
// the returned error lists every module that failed.
func LoadKernelModules(ctx context.Context, load ModuleLoader, modules []string) (err error) {
	if load == nil {
		load = Modprobe
	}

	failed := []string{}
	for _, module := range modules {
		loadErr := load(ctx, module)
		if loadErr != nil {
			failed = append(failed, loadErr.Error())
		}
	}
	if len(failed) > 0 {
		err = errors.Errorf("failed to load kernel module(s): %s", strings.Join(failed, "; "))
	}

	return
}
