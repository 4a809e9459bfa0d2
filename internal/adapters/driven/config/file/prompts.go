package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// builtinPrompt is a shipped template and the number of %s verbs it takes.
type builtinPrompt struct {
	text  string
	verbs int
}

var builtinPrompts = map[string]builtinPrompt{
	driven.PromptQueryExpand: {text: domain.QueryExpandTemplate, verbs: 1},
	driven.PromptAnswer:      {text: domain.AnswerTemplate, verbs: 2},
}

const promptReadme = `# Regula prompts

Templates sent to the generation model. Edit a file to change the wording;
the next command picks it up.

query_expand.txt  one %s: the question
answer.txt        two %s: the regulation excerpts, then the question

A file whose %s count does not match is ignored and the built-in template
is used instead. Write a literal percent sign as %%.
`

// PromptStore serves templates from <dir>/<name>.txt. The directory is
// seeded with the built-in templates on first Load.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu     sync.RWMutex
	loaded map[string]string
}

// NewPromptStore returns a store rooted at dir, or ~/.regula/prompts when
// dir is empty. It does no I/O.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, loaded: make(map[string]string)}, nil
}

// Dir returns the template directory.
func (s *PromptStore) Dir() string { return s.dir }

// Load returns the named template. Unreadable or malformed files fall back
// to the built-in template; only unknown names without a file fail.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)

	s.mu.RLock()
	cached, ok := s.loaded[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	builtin, known := builtinPrompts[name]
	if s.seedErr != nil {
		if known {
			return builtin.text, nil
		}
		return "", fmt.Errorf("prompt %q: %w", name, s.seedErr)
	}

	text, err := s.read(name)
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		text = builtin.text
	case known && countVerbs(text) != builtin.verbs:
		text = builtin.text
	}

	s.mu.Lock()
	if prev, ok := s.loaded[name]; ok {
		text = prev
	} else {
		s.loaded[name] = text
	}
	s.mu.Unlock()
	return text, nil
}

// Reload forgets every loaded template.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.loaded)
	s.mu.Unlock()
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// seed creates the directory and writes any missing default files.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	files := map[string]string{"README.md": promptReadme}
	for name, p := range builtinPrompts {
		files[name+".txt"] = p.text
	}
	for file, content := range files {
		if err := writeIfMissing(filepath.Join(s.dir, file), content); err != nil {
			s.seedErr = fmt.Errorf("seed %s: %w", file, err)
			return
		}
	}
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// countVerbs counts %s verbs, ignoring escaped percent signs.
func countVerbs(tmpl string) int {
	return strings.Count(strings.ReplaceAll(tmpl, "%%", ""), "%s")
}
