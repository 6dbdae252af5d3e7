package datacollect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/EternisAI/datacollect/internal/cmdline"
)

var ErrMalformedOutput = errors.New("malformed registration script output")

type RegistrationState string

const (
	RegistrationUnknown  RegistrationState = "unknown"
	RegistrationNotFound RegistrationState = "not_found"
	RegistrationOwned    RegistrationState = "owned"
	RegistrationFree     RegistrationState = "free"
	RegistrationForeign  RegistrationState = "foreign"
)

// RegistrationStatus is the answer of the registration server. URL and
// RegistrationNumber are set only for the free and foreign states.
type RegistrationStatus struct {
	Status             RegistrationState `json:"status"`
	URL                string            `json:"url,omitempty"`
	RegistrationNumber string            `json:"registration_number,omitempty"`
}

var (
	codeRe   = regexp.MustCompile(`code: ([0-9]+)`)
	statusRe = regexp.MustCompile(`status: (\w+)`)
	urlRe    = regexp.MustCompile(`url: (\S+)`)
)

type CodeReader interface {
	RegistrationNumber() (string, error)
}

// RegistrationClient queries the registration server through the
// server-uplink scripts.
type RegistrationClient struct {
	runner        cmdline.Runner
	codes         CodeReader
	registeredCmd string
	codeCmd       string
}

func NewRegistrationClient(runner cmdline.Runner, codes CodeReader, registeredCmd, codeCmd string) *RegistrationClient {
	return &RegistrationClient{
		runner:        runner,
		codes:         codes,
		registeredCmd: registeredCmd,
		codeCmd:       codeCmd,
	}
}

// GetRegistered returns the registration status for the given email. When
// the server does not know the device, the registration code is refreshed
// and the query is repeated exactly once.
func (c *RegistrationClient) GetRegistered(ctx context.Context, email, language string) (RegistrationStatus, error) {
	res, err := c.query(ctx, email, language)
	if err != nil {
		return RegistrationStatus{}, err
	}
	if res.Status != RegistrationNotFound {
		return res, nil
	}

	if _, err := cmdline.RunAndCheck(ctx, c.runner, 0, c.codeCmd); err != nil {
		if errors.Is(err, cmdline.ErrCommandFailed) {
			slog.Warn("Failed to refresh registration code", "error", err)
			return RegistrationStatus{Status: RegistrationNotFound}, nil
		}
		return RegistrationStatus{}, err
	}

	return c.query(ctx, email, language)
}

func (c *RegistrationClient) query(ctx context.Context, email, language string) (RegistrationStatus, error) {
	code, err := c.codes.RegistrationNumber()
	if err != nil {
		return RegistrationStatus{}, err
	}
	if code == "" {
		slog.Warn("Registration code is not available")
		return RegistrationStatus{Status: RegistrationUnknown}, nil
	}

	result, err := c.runner.Run(ctx, c.registeredCmd, email, language)
	if err != nil {
		return RegistrationStatus{}, err
	}
	if result.ExitCode != 0 {
		slog.Warn("Registration query failed", "exit_code", result.ExitCode)
		return RegistrationStatus{Status: RegistrationUnknown}, nil
	}

	return parseRegistrationOutput(string(result.Stdout), code)
}

func parseRegistrationOutput(stdout, registrationCode string) (RegistrationStatus, error) {
	codeMatch := codeRe.FindStringSubmatch(stdout)
	if codeMatch == nil {
		return RegistrationStatus{}, fmt.Errorf("%w: missing code", ErrMalformedOutput)
	}
	httpCode, err := strconv.Atoi(codeMatch[1])
	if err != nil {
		return RegistrationStatus{}, fmt.Errorf("%w: invalid code %q", ErrMalformedOutput, codeMatch[1])
	}
	if httpCode != 200 {
		return RegistrationStatus{Status: RegistrationNotFound}, nil
	}

	statusMatch := statusRe.FindStringSubmatch(stdout)
	if statusMatch == nil {
		return RegistrationStatus{}, fmt.Errorf("%w: missing status", ErrMalformedOutput)
	}

	switch state := RegistrationState(statusMatch[1]); state {
	case RegistrationOwned:
		return RegistrationStatus{Status: state}, nil
	case RegistrationFree, RegistrationForeign:
		urlMatch := urlRe.FindStringSubmatch(stdout)
		if urlMatch == nil {
			return RegistrationStatus{}, fmt.Errorf("%w: missing url", ErrMalformedOutput)
		}
		return RegistrationStatus{
			Status:             state,
			URL:                urlMatch[1],
			RegistrationNumber: registrationCode,
		}, nil
	}

	return RegistrationStatus{Status: RegistrationUnknown}, nil
}
