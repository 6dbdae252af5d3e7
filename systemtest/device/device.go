// Package device lays out a fake router filesystem for system tests.
package device

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/EternisAI/datacollect/internal/datacollect"
	"github.com/stretchr/testify/require"
)

const RegistrationCode = "0000000B00009CD6"

type Device struct {
	Root   string
	Config datacollect.Config
	// ActionLog collects one "<service> <action>" line per init script call.
	ActionLog string
}

func New(t *testing.T) *Device {
	t.Helper()
	root := t.TempDir()

	d := &Device{
		Root: root,
		Config: datacollect.Config{
			FirewallStatusPath:   filepath.Join(root, "tmp", "firewall-turris-status.txt"),
			CollectorStatusPath:  filepath.Join(root, "tmp", "ucollect-status"),
			LockPath:             filepath.Join(root, "var", "lock", "status.lock"),
			RegisteredCmd:        filepath.Join(root, "uplink", "registered.sh"),
			RegistrationCodeCmd:  filepath.Join(root, "uplink", "registration_code.sh"),
			RegistrationCodePath: filepath.Join(root, "uplink", "registration_code"),
			UciConfigDir:         filepath.Join(root, "etc", "config"),
			InitDir:              filepath.Join(root, "etc", "init.d"),
			ServiceName:          "ucollect",
		},
		ActionLog: filepath.Join(root, "actions.log"),
	}

	for _, dir := range []string{"tmp", "var/lock", "uplink", "etc/config", "etc/init.d"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}

	initScript := "#!/bin/sh\necho \"ucollect $1\" >> " + d.ActionLog + "\n"
	d.WriteScript(t, filepath.Join(d.Config.InitDir, "ucollect"), initScript)
	d.WriteFile(t, d.Config.RegistrationCodePath, RegistrationCode+"\n")
	d.WriteScript(t, d.Config.RegistrationCodeCmd, "#!/bin/sh\nexit 0\n")
	d.SetRegistration(t, 200, "free")

	return d
}

func (d *Device) WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (d *Device) WriteScript(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0755))
}

// SetRegistration makes the registration script answer with the given
// code and status.
func (d *Device) SetRegistration(t *testing.T, code int, status string) {
	t.Helper()
	script := "#!/bin/sh\n" +
		"echo \"status: " + status + "\"\n" +
		"echo \"url: https://some.page/${2}/data?email=${1}\"\n" +
		"echo \"code: " + strconv.Itoa(code) + "\"\n"
	d.WriteScript(t, d.Config.RegisteredCmd, script)
}

func (d *Device) Actions(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(d.ActionLog)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func (d *Device) ReadConfig(t *testing.T, pkg string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(d.Config.UciConfigDir, pkg))
	require.NoError(t, err)
	return string(data)
}
