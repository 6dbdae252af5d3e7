package datacollect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/EternisAI/datacollect/internal/services"
	"github.com/EternisAI/datacollect/internal/uci"
)

// ConfigStore is the subset of the uci store used by this module.
type ConfigStore interface {
	GetOptionNamed(pkg, section, name string) (*uci.Option, error)
	GetOptionNamedDefault(pkg, section, name, def string) (string, error)
	Update(fn func(tx *uci.Tx) error) error
}

// HoneypotConfig holds the minipot switches. Minipots maps every known
// identifier to its enabled state.
type HoneypotConfig struct {
	LogCredentials bool            `json:"log_credentials"`
	Minipots       map[string]bool `json:"minipots"`
}

// Complete returns the configuration with every known minipot present.
// Identifiers missing from Minipots are enabled; unknown ones are dropped.
func (c HoneypotConfig) Complete() HoneypotConfig {
	minipots := make(map[string]bool, len(Minipots))
	for _, m := range Minipots {
		enabled, ok := c.Minipots[m]
		minipots[m] = enabled || !ok
	}
	return HoneypotConfig{LogCredentials: c.LogCredentials, Minipots: minipots}
}

// ConsentSettings keeps the data collection agreement and the honeypot
// options in uci and drives the collector service accordingly.
type ConsentSettings struct {
	store       ConfigStore
	services    services.Manager
	serviceName string
}

func NewConsentSettings(store ConfigStore, manager services.Manager, serviceName string) *ConsentSettings {
	return &ConsentSettings{
		store:       store,
		services:    manager,
		serviceName: serviceName,
	}
}

func (s *ConsentSettings) GetAgreed() (bool, error) {
	opt, err := s.store.GetOptionNamed(ForisConfig, EulaSection, AgreedOption)
	if errors.Is(err, uci.ErrRecordNotFound) {
		return AgreedDefault, nil
	}
	if err != nil {
		return false, err
	}
	return uci.ParseBool(opt.Value())
}

// SetAgreed stores the agreement and then enables or disables the collector.
// The stored value is not rolled back when the service action fails.
func (s *ConsentSettings) SetAgreed(ctx context.Context, agreed bool) (bool, error) {
	err := s.store.Update(func(tx *uci.Tx) error {
		if err := tx.AddSection(ForisConfig, EulaSectionType, EulaSection); err != nil {
			return err
		}
		return tx.SetOption(ForisConfig, EulaSection, AgreedOption, uci.StoreBool(agreed))
	})
	if err != nil {
		return false, fmt.Errorf("store agreement: %w", err)
	}

	if agreed {
		if err := s.services.Enable(ctx, s.serviceName); err != nil {
			return false, err
		}
		if err := s.services.Restart(ctx, s.serviceName); err != nil {
			return false, err
		}
	} else {
		if err := s.services.Disable(ctx, s.serviceName); err != nil {
			return false, err
		}
		if err := s.services.Stop(ctx, s.serviceName); err != nil {
			return false, err
		}
	}

	slog.Info("Data collection agreement updated", "agreed", agreed)
	return true, nil
}

func (s *ConsentSettings) GetHoneypots() (HoneypotConfig, error) {
	rawLogCredentials, err := s.store.GetOptionNamedDefault(
		CollectorConfig, FakesSection, LogCredentialsOption, uci.StoreBool(LogCredentialsDefault),
	)
	if err != nil {
		return HoneypotConfig{}, err
	}
	logCredentials, err := uci.ParseBool(rawLogCredentials)
	if err != nil {
		return HoneypotConfig{}, err
	}

	minipots := make(map[string]bool, len(Minipots))
	for _, m := range Minipots {
		minipots[m] = true
	}

	disabled, err := s.store.GetOptionNamed(CollectorConfig, FakesSection, DisableOption)
	if err != nil && !errors.Is(err, uci.ErrRecordNotFound) {
		return HoneypotConfig{}, err
	}
	if err == nil {
		for _, id := range disabled.List() {
			if IsMinipot(id) {
				minipots[id] = false
			}
		}
	}

	return HoneypotConfig{
		LogCredentials: logCredentials,
		Minipots:       minipots,
	}, nil
}

// SetHoneypots replaces the list of disabled minipots and restarts the
// collector.
func (s *ConsentSettings) SetHoneypots(ctx context.Context, cfg HoneypotConfig) (bool, error) {
	full := cfg.Complete()
	var disabled []string
	for _, m := range Minipots {
		if !full.Minipots[m] {
			disabled = append(disabled, m)
		}
	}

	err := s.store.Update(func(tx *uci.Tx) error {
		if err := tx.AddSection(CollectorConfig, FakesSectionType, FakesSection); err != nil {
			return err
		}
		if err := tx.ReplaceList(CollectorConfig, FakesSection, DisableOption, disabled); err != nil {
			return err
		}
		return tx.SetOption(CollectorConfig, FakesSection, LogCredentialsOption, uci.StoreBool(cfg.LogCredentials))
	})
	if err != nil {
		return false, fmt.Errorf("store honeypots: %w", err)
	}

	if err := s.services.Restart(ctx, s.serviceName); err != nil {
		return false, err
	}

	slog.Info("Honeypot settings updated", "disabled", disabled, "log_credentials", cfg.LogCredentials)
	return true, nil
}
