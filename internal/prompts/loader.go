// Package prompts holds the tutor's prompt templates, embedded as JSON files
// mapping a key to a template with {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var placeholder = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// Set is the parsed contents of one prompt file.
type Set map[string]string

var (
	setsMu sync.Mutex
	sets   = make(map[string]Set)
)

// Load parses an embedded prompt file such as "tutor.json". Parsed files are cached.
func Load(filename string) (Set, error) {
	setsMu.Lock()
	defer setsMu.Unlock()
	if s, ok := sets[filename]; ok {
		return s, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	sets[filename] = s
	return s, nil
}

// Keys returns the prompt keys in a file, sorted.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Placeholders returns the distinct placeholder names used by key, sorted.
func (s Set) Placeholders(key string) ([]string, error) {
	tmpl, ok := s[key]
	if !ok {
		return nil, fmt.Errorf("prompt key %q not found", key)
	}
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names, nil
}

// Render fills the placeholders of key from data in a single pass, so values
// that look like placeholders are left as written. Every placeholder must
// have a value.
func (s Set) Render(key string, data map[string]string) (string, error) {
	names, err := s.Placeholders(key)
	if err != nil {
		return "", err
	}
	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		v, ok := data[name]
		if !ok {
			return "", fmt.Errorf("prompt %q: no value for {{.%s}}", key, name)
		}
		pairs = append(pairs, "{{."+name+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s[key]), nil
}

// Render loads filename and renders key from it.
func Render(filename, key string, data map[string]string) (string, error) {
	s, err := Load(filename)
	if err != nil {
		return "", err
	}
	out, err := s.Render(key, data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filename, err)
	}
	return out, nil
}
