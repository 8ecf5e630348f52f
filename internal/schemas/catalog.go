package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed catalog/*.json
var catalogFiles embed.FS

// Names of the schemas shipped in the catalog.
const (
	Roadmap      = "roadmap"
	Resources    = "resources"
	Quiz         = "quiz"
	Flashcards   = "flashcards"
	ForumThreads = "forum_threads"
	Analysis     = "analysis"
)

// Schema is a named JSON Schema document describing structured model output.
// Definition is the decoded schema object; Raw keeps the original bytes.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
	Raw         json.RawMessage
}

// New builds a Schema from a raw JSON Schema document.
func New(name string, raw []byte) (*Schema, error) {
	var def map[string]any
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "invalid schema JSON", Cause: err}
	}
	desc, _ := def["description"].(string)
	return &Schema{
		Name:        name,
		Description: desc,
		Definition:  def,
		Raw:         json.RawMessage(raw),
	}, nil
}

var (
	catalogMu sync.RWMutex
	catalog   = make(map[string]*Schema)
)

// Get returns a catalog schema by name (e.g. "quiz").
func Get(name string) (*Schema, error) {
	catalogMu.RLock()
	s, ok := catalog[name]
	catalogMu.RUnlock()
	if ok {
		return s, nil
	}

	data, err := catalogFiles.ReadFile(path.Join("catalog", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("schema %q not found: %w", name, err)
	}
	s, err = New(name, data)
	if err != nil {
		return nil, err
	}

	catalogMu.Lock()
	catalog[name] = s
	catalogMu.Unlock()
	return s, nil
}

// MustGet is Get for schemas required at initialization time.
func MustGet(name string) *Schema {
	s, err := Get(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load schema: %v", err))
	}
	return s
}

// List returns the names of all catalog schemas, sorted.
func List() ([]string, error) {
	entries, err := catalogFiles.ReadDir("catalog")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema catalog: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
