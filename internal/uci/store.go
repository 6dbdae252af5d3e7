package uci

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	gouci "github.com/digineo/go-uci/v2"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store is a uci configuration store rooted at a directory (normally
// /etc/config) holding one file per config namespace. Other tools edit the
// same files, so every read and every transaction starts from disk.
type Store struct {
	mu   sync.Mutex
	dir  string
	tree gouci.Tree
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, tree: gouci.NewTree(dir)}
}

// GetOptionNamed looks up an option of a named section.
func (s *Store) GetOptionNamed(pkg, section, name string) (*Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(pkg); err != nil {
		return nil, err
	}
	values, ok := s.tree.Get(pkg, section, name)
	if !ok {
		return nil, fmt.Errorf("%w: section %s.%s", ErrRecordNotFound, pkg, section)
	}
	if values == nil {
		return nil, fmt.Errorf("%w: option %s.%s.%s", ErrRecordNotFound, pkg, section, name)
	}
	return &Option{Name: name, Values: append([]string(nil), values...)}, nil
}

// GetOptionNamedDefault returns the scalar value of an option or def when the
// option, its section or the whole config is missing.
func (s *Store) GetOptionNamedDefault(pkg, section, name, def string) (string, error) {
	o, err := s.GetOptionNamed(pkg, section, name)
	if errors.Is(err, ErrRecordNotFound) {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	return o.Value(), nil
}

// load replaces the cached copy of pkg with the file content.
func (s *Store) load(pkg string) error {
	if !namePattern.MatchString(pkg) {
		return fmt.Errorf("invalid config name %q", pkg)
	}
	s.tree.Revert(pkg)
	if err := s.tree.LoadConfig(pkg, true); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: config %s", ErrRecordNotFound, pkg)
		}
		return loadError(pkg, err)
	}
	return nil
}

func loadError(pkg string, err error) error {
	var parseErr gouci.ParseError
	var parseErrPtr *gouci.ParseError
	if errors.As(err, &parseErr) || errors.As(err, &parseErrPtr) {
		return fmt.Errorf("%w: %s: %v", ErrParse, pkg, err)
	}
	return fmt.Errorf("read config %s: %w", pkg, err)
}

// Update runs fn inside a transaction. Changes are committed only when fn
// returns nil; every touched namespace is replaced through a temporary file
// and a rename.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{store: s, touched: make(map[string]bool)}
	if err := fn(tx); err != nil {
		tx.revert()
		return err
	}
	if len(tx.touched) == 0 {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		tx.revert()
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := s.tree.Commit(); err != nil {
		tx.revert()
		return fmt.Errorf("commit config: %w", err)
	}
	slog.Debug("Config committed", "configs", tx.names())
	return nil
}

// Tx stages changes in the store's tree.
type Tx struct {
	store   *Store
	touched map[string]bool
}

func (tx *Tx) names() []string {
	names := make([]string, 0, len(tx.touched))
	for pkg := range tx.touched {
		names = append(names, pkg)
	}
	return names
}

func (tx *Tx) revert() {
	// Revert without arguments drops the whole tree.
	if names := tx.names(); len(names) > 0 {
		tx.store.tree.Revert(names...)
	}
}

// touch loads pkg from disk the first time the transaction uses it. A
// missing file is fine; AddSection creates it.
func (tx *Tx) touch(pkg string) error {
	if tx.touched[pkg] {
		return nil
	}
	err := tx.store.load(pkg)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return err
	}
	tx.touched[pkg] = true
	return nil
}

// AddSection creates a named section unless it already exists. An existing
// section keeps its type and options.
func (tx *Tx) AddSection(pkg, sectionType, name string) error {
	if !namePattern.MatchString(name) || !namePattern.MatchString(sectionType) {
		return fmt.Errorf("invalid section %s %q", sectionType, name)
	}
	if err := tx.touch(pkg); err != nil {
		return err
	}

	err := tx.store.tree.AddSection(pkg, name, sectionType)
	var mismatch gouci.ErrSectionTypeMismatch
	if errors.As(err, &mismatch) {
		slog.Debug("Keeping existing section type", "config", pkg, "section", name, "type", mismatch.ExistingType)
		return nil
	}
	if err != nil {
		return fmt.Errorf("add section %s.%s: %w", pkg, name, err)
	}
	return nil
}

func (tx *Tx) SetOption(pkg, section, name, value string) error {
	return tx.set(pkg, section, name, gouci.TypeOption, []string{value})
}

// ReplaceList overwrites a list option. An empty list removes the option.
func (tx *Tx) ReplaceList(pkg, section, name string, values []string) error {
	return tx.set(pkg, section, name, gouci.TypeList, values)
}

// set drops the option before writing it so the stored kind (option or
// list) always follows typ.
func (tx *Tx) set(pkg, section, name string, typ gouci.OptionType, values []string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid option name %q", name)
	}
	for _, v := range values {
		if strings.ContainsAny(v, "'\n") {
			return fmt.Errorf("%w: %s.%s.%s = %q", ErrInvalidValue, pkg, section, name, v)
		}
	}
	if err := tx.touch(pkg); err != nil {
		return err
	}

	if err := tx.store.tree.Del(pkg, section, name); err != nil {
		return sectionError(pkg, section, err)
	}
	if len(values) == 0 {
		return nil
	}
	if err := tx.store.tree.SetType(pkg, section, name, typ, values...); err != nil {
		return sectionError(pkg, section, err)
	}
	return nil
}

func sectionError(pkg, section string, err error) error {
	var notFound gouci.ErrSectionNotFound
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: section %s.%s", ErrRecordNotFound, pkg, section)
	}
	return fmt.Errorf("config %s: %w", pkg, err)
}
