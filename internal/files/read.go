package files

import (
	"fmt"
	"os"
)

// ReadText returns the content of a text file. The returned error wraps
// fs.ErrNotExist when the file is absent.
func ReadText(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(content), nil
}
