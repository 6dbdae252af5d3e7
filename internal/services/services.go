package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/EternisAI/datacollect/internal/cmdline"
)

const (
	ActionEnable  = "enable"
	ActionDisable = "disable"
	ActionRestart = "restart"
	ActionStop    = "stop"
)

var serviceNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Manager controls init system services.
type Manager interface {
	Enable(ctx context.Context, name string) error
	Disable(ctx context.Context, name string) error
	Restart(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
}

// InitD drives OpenWrt style /etc/init.d scripts.
type InitD struct {
	dir    string
	runner cmdline.Runner
}

func NewInitD(dir string, runner cmdline.Runner) *InitD {
	return &InitD{dir: dir, runner: runner}
}

func (m *InitD) Enable(ctx context.Context, name string) error {
	return m.run(ctx, name, ActionEnable)
}

func (m *InitD) Disable(ctx context.Context, name string) error {
	return m.run(ctx, name, ActionDisable)
}

func (m *InitD) Restart(ctx context.Context, name string) error {
	return m.run(ctx, name, ActionRestart)
}

func (m *InitD) Stop(ctx context.Context, name string) error {
	return m.run(ctx, name, ActionStop)
}

func (m *InitD) run(ctx context.Context, name, action string) error {
	if !serviceNamePattern.MatchString(name) {
		return fmt.Errorf("invalid service name %q", name)
	}
	script := filepath.Join(m.dir, name)
	if _, err := cmdline.RunAndCheck(ctx, m.runner, 0, script, action); err != nil {
		return fmt.Errorf("service %s %s: %w", name, action, err)
	}
	slog.Info("Service action completed", "service", name, "action", action)
	return nil
}
