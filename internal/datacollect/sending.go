package datacollect

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/EternisAI/datacollect/internal/files"
)

type ServiceState string

const (
	StateOnline  ServiceState = "online"
	StateOffline ServiceState = "offline"
	StateUnknown ServiceState = "unknown"
)

const firewallWorkingMarker = "turris firewall working: yes"

var (
	firewallTimestampRe = regexp.MustCompile(`last working timestamp: ([0-9]+)`)
	collectorStatusRe   = regexp.MustCompile(`\A(\w+)\s+([0-9]+)\n?\z`)
)

type ServiceStatus struct {
	State     ServiceState `json:"state"`
	LastCheck uint64       `json:"last_check"`
}

type SendingInfo struct {
	FirewallStatus  ServiceStatus `json:"firewall_status"`
	CollectorStatus ServiceStatus `json:"collector_status"`
}

// Locker guards the status files against a concurrent writer.
type Locker interface {
	RLock() (func(), error)
}

// SendingFiles reads the status files written by the firewall log sender
// and by the collector.
type SendingFiles struct {
	lock          Locker
	firewallPath  string
	collectorPath string
}

func NewSendingFiles(lock Locker, firewallPath, collectorPath string) *SendingFiles {
	return &SendingFiles{
		lock:          lock,
		firewallPath:  firewallPath,
		collectorPath: collectorPath,
	}
}

// GetSendingInfo parses both status files under the shared lock. Missing or
// malformed files leave the matching status unknown.
func (f *SendingFiles) GetSendingInfo() (SendingInfo, error) {
	unlock, err := f.lock.RLock()
	if err != nil {
		return SendingInfo{}, err
	}
	defer unlock()

	return SendingInfo{
		FirewallStatus:  f.firewallStatus(),
		CollectorStatus: f.collectorStatus(),
	}, nil
}

func (f *SendingFiles) firewallStatus() ServiceStatus {
	status := ServiceStatus{State: StateUnknown}

	content, err := files.ReadText(f.firewallPath)
	if err != nil {
		slog.Warn("Failed to read firewall status file", "path", f.firewallPath, "error", err)
		return status
	}

	status.State = StateOffline
	if strings.Contains(content, firewallWorkingMarker) {
		status.State = StateOnline
	}
	if match := firewallTimestampRe.FindStringSubmatch(content); match != nil {
		if ts, err := strconv.ParseUint(match[1], 10, 64); err == nil {
			status.LastCheck = ts
		} else {
			slog.Warn("Invalid timestamp in firewall status file", "path", f.firewallPath, "error", err)
		}
	}
	return status
}

func (f *SendingFiles) collectorStatus() ServiceStatus {
	status := ServiceStatus{State: StateUnknown}

	content, err := files.ReadText(f.collectorPath)
	if err != nil {
		slog.Warn("Failed to read collector status file", "path", f.collectorPath, "error", err)
		return status
	}

	match := collectorStatusRe.FindStringSubmatch(content)
	if match == nil {
		slog.Error("Wrong format of collector status file", "path", f.collectorPath)
		return status
	}
	ts, err := strconv.ParseUint(match[2], 10, 64)
	if err != nil {
		slog.Error("Wrong format of collector status file", "path", f.collectorPath, "error", err)
		return status
	}

	status.State = StateOffline
	if match[1] == string(StateOnline) {
		status.State = StateOnline
	}
	status.LastCheck = ts
	return status
}
