package datacollect

import (
	"context"

	"github.com/EternisAI/datacollect/internal/cmdline"
	"github.com/EternisAI/datacollect/internal/files"
	"github.com/EternisAI/datacollect/internal/services"
	"github.com/EternisAI/datacollect/internal/uplink"
)

// Notifier publishes change notifications to listeners of the module.
type Notifier interface {
	Publish(module, action string, data any)
}

type Info struct {
	Agreed bool `json:"agreed"`
	SendingInfo
}

type AgreedNotification struct {
	Agreed bool `json:"agreed"`
}

// Service exposes the data collection operations.
type Service struct {
	registration *RegistrationClient
	sending      *SendingFiles
	consent      *ConsentSettings
	notifier     Notifier
}

func NewService(registration *RegistrationClient, sending *SendingFiles, consent *ConsentSettings, notifier Notifier) *Service {
	return &Service{
		registration: registration,
		sending:      sending,
		consent:      consent,
		notifier:     notifier,
	}
}

// New wires the service from configuration using the router backends.
func New(cfg Config, runner cmdline.Runner, store ConfigStore, notifier Notifier) *Service {
	cfg = cfg.WithDefaults()
	return NewService(
		NewRegistrationClient(runner, uplink.NewFiles(cfg.RegistrationCodePath), cfg.RegisteredCmd, cfg.RegistrationCodeCmd),
		NewSendingFiles(files.NewRWLock(cfg.LockPath), cfg.FirewallStatusPath, cfg.CollectorStatusPath),
		NewConsentSettings(store, services.NewInitD(cfg.InitDir, runner), cfg.ServiceName),
		notifier,
	)
}

func (s *Service) Get(ctx context.Context) (Info, error) {
	agreed, err := s.consent.GetAgreed()
	if err != nil {
		return Info{}, err
	}
	sending, err := s.sending.GetSendingInfo()
	if err != nil {
		return Info{}, err
	}
	return Info{Agreed: agreed, SendingInfo: sending}, nil
}

func (s *Service) Set(ctx context.Context, agreed bool) (bool, error) {
	result, err := s.consent.SetAgreed(ctx, agreed)
	if err != nil {
		return false, err
	}
	s.notifier.Publish(ModuleName, "set", AgreedNotification{Agreed: agreed})
	return result, nil
}

func (s *Service) GetHoneypots(ctx context.Context) (HoneypotConfig, error) {
	return s.consent.GetHoneypots()
}

func (s *Service) SetHoneypots(ctx context.Context, cfg HoneypotConfig) (bool, error) {
	result, err := s.consent.SetHoneypots(ctx, cfg)
	if err != nil {
		return false, err
	}
	s.notifier.Publish(ModuleName, "set_honeypots", cfg.Complete())
	return result, nil
}

func (s *Service) GetRegistered(ctx context.Context, email, language string) (RegistrationStatus, error) {
	return s.registration.GetRegistered(ctx, email, language)
}
