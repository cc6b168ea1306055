package drivers

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestLoadKernelModules(t *testing.T) {
	loaded := []string{}
	loader := func(ctx context.Context, module string) error {
		loaded = append(loaded, module)
		if module == "w1-gpio" {
			return errors.New("module not found")
		}
		return nil
	}

	err := LoadKernelModules(context.Background(), loader, DefaultKernelModules)
	if err == nil {
		t.Fatal("expected error when a module fails to load")
	}
	if !strings.Contains(err.Error(), "module not found") {
		t.Errorf("error should mention the failure, got %v", err)
	}
	if strings.Join(loaded, ",") != "w1-gpio,w1-therm" {
		t.Errorf("expected both modules to be tried in order, got %v", loaded)
	}

	err = LoadKernelModules(context.Background(), func(context.Context, string) error { return nil }, DefaultKernelModules)
	if err != nil {
		t.Errorf("got error when every module loads: %v", err)
	}
}
