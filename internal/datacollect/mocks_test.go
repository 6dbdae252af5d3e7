package datacollect

import (
	"context"
	"sync"

	"github.com/EternisAI/datacollect/internal/cmdline"
	"github.com/stretchr/testify/mock"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (cmdline.Result, error) {
	ret := m.Called(name, args)
	return ret.Get(0).(cmdline.Result), ret.Error(1)
}

type MockServices struct {
	mock.Mock
}

func (m *MockServices) Enable(ctx context.Context, name string) error {
	return m.MethodCalled("enable", name).Error(0)
}

func (m *MockServices) Disable(ctx context.Context, name string) error {
	return m.MethodCalled("disable", name).Error(0)
}

func (m *MockServices) Restart(ctx context.Context, name string) error {
	return m.MethodCalled("restart", name).Error(0)
}

func (m *MockServices) Stop(ctx context.Context, name string) error {
	return m.MethodCalled("stop", name).Error(0)
}

type staticCode string

func (c staticCode) RegistrationNumber() (string, error) {
	return string(c), nil
}

type published struct {
	Module string
	Action string
	Data   any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *recordingNotifier) Publish(module, action string, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{Module: module, Action: action, Data: data})
}

func (n *recordingNotifier) last() published {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}
