package datacollect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/EternisAI/datacollect/internal/cmdline"
	"github.com/EternisAI/datacollect/internal/files"
	"github.com/EternisAI/datacollect/internal/uci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	dir      string
	service  *Service
	services *MockServices
	runner   *MockRunner
	notifier *recordingNotifier
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	dir := t.TempDir()
	f := &serviceFixture{
		dir:      dir,
		services: &MockServices{},
		runner:   &MockRunner{},
		notifier: &recordingNotifier{},
	}
	f.service = NewService(
		NewRegistrationClient(f.runner, staticCode(testCode), registeredCmd, codeCmd),
		NewSendingFiles(files.NewRWLock(filepath.Join(dir, "lock")), filepath.Join(dir, "fw"), filepath.Join(dir, "uc")),
		NewConsentSettings(uci.NewStore(filepath.Join(dir, "config")), f.services, "ucollect"),
		f.notifier,
	)
	return f
}

func TestServiceGet(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "uc"), []byte("online 12345"), 0644))

	info, err := f.service.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, info.Agreed)
	assert.Equal(t, ServiceStatus{State: StateOnline, LastCheck: 12345}, info.CollectorStatus)
	assert.Equal(t, ServiceStatus{State: StateUnknown}, info.FirewallStatus)
}

func TestServiceSetNotifies(t *testing.T) {
	f := newServiceFixture(t)
	f.services.On("enable", "ucollect").Return(nil)
	f.services.On("restart", "ucollect").Return(nil)
	f.services.On("disable", "ucollect").Return(nil)
	f.services.On("stop", "ucollect").Return(nil)
	ctx := context.Background()

	for _, value := range []bool{true, false, true, false} {
		ok, err := f.service.Set(ctx, value)
		require.NoError(t, err)
		assert.True(t, ok)

		assert.Equal(t, published{ModuleName, "set", AgreedNotification{Agreed: value}}, f.notifier.last())

		info, err := f.service.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, value, info.Agreed)
	}
	assert.Len(t, f.notifier.events, 4)
}

func TestServiceSetFailureDoesNotNotify(t *testing.T) {
	f := newServiceFixture(t)
	f.services.On("disable", "ucollect").Return(errors.New("boom"))

	_, err := f.service.Set(context.Background(), false)
	require.Error(t, err)
	assert.Empty(t, f.notifier.events)
}

func TestServiceSetHoneypotsNotifies(t *testing.T) {
	f := newServiceFixture(t)
	f.services.On("restart", "ucollect").Return(nil)
	ctx := context.Background()

	cfg := HoneypotConfig{LogCredentials: true, Minipots: allMinipots(false)}
	ok, err := f.service.SetHoneypots(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, published{ModuleName, "set_honeypots", cfg}, f.notifier.last())

	got, err := f.service.GetHoneypots(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestServiceGetRegistered(t *testing.T) {
	f := newServiceFixture(t)
	f.runner.On("Run", registeredCmd, []string{"test@test.test", "cs"}).Return(scriptOutput(200, "owned"), nil)

	res, err := f.service.GetRegistered(context.Background(), "test@test.test", "cs")
	require.NoError(t, err)
	assert.Equal(t, RegistrationStatus{Status: RegistrationOwned}, res)
}

func TestNewUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		FirewallStatusPath:   filepath.Join(dir, "fw"),
		CollectorStatusPath:  filepath.Join(dir, "uc"),
		LockPath:             filepath.Join(dir, "lock"),
		RegistrationCodePath: filepath.Join(dir, "registration_code"),
	}
	svc := New(cfg, cmdline.NewExecRunner(), uci.NewStore(filepath.Join(dir, "config")), &recordingNotifier{})

	res, err := svc.GetRegistered(context.Background(), "a@b.c", "en")
	require.NoError(t, err)
	assert.Equal(t, RegistrationUnknown, res.Status)

	full := Config{}.WithDefaults()
	assert.Equal(t, DefaultServiceName, full.ServiceName)
	assert.Equal(t, DefaultUciConfigDir, full.UciConfigDir)
	assert.Equal(t, DefaultInitDir, full.InitDir)
}

func TestServiceSetHoneypotsPublishesFullState(t *testing.T) {
	f := newServiceFixture(t)
	f.services.On("restart", "ucollect").Return(nil)
	ctx := context.Background()

	_, err := f.service.SetHoneypots(ctx, HoneypotConfig{Minipots: map[string]bool{"8080tcp": false}})
	require.NoError(t, err)

	stored, err := f.service.GetHoneypots(ctx)
	require.NoError(t, err)
	assert.Equal(t, published{ModuleName, "set_honeypots", stored}, f.notifier.last())
	assert.Len(t, stored.Minipots, len(Minipots))
	assert.False(t, stored.Minipots["8080tcp"])
	assert.True(t, stored.Minipots["23tcp"])
}
