package uplink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const DefaultRegistrationCodePath = "/usr/share/server-uplink/registration_code"

// Files reads the data the server-uplink package leaves on disk.
type Files struct {
	codePath string
}

func NewFiles(codePath string) *Files {
	if codePath == "" {
		codePath = DefaultRegistrationCodePath
	}
	return &Files{codePath: codePath}
}

// RegistrationNumber returns the locally stored registration code, or an
// empty string when none was generated yet.
func (f *Files) RegistrationNumber() (string, error) {
	content, err := os.ReadFile(f.codePath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read registration code: %w", err)
	}
	return strings.TrimSpace(string(content)), nil
}
