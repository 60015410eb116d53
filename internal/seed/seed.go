// Package seed loads bulk-provisioning documents for the configuration
// store. A seed file is a YAML document mapping application namespaces to
// key-value pairs; it is validated against a CUE schema before a single
// entry is written, so a bad file never results in a half-applied import.
package seed

import (
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// seedSchema is the closed shape every seed document must satisfy:
// string values only, nothing but "apps" at the top level.
const seedSchema = `
#Seed: {
	apps: [string]: [string]: string
}
`

// Seed is a validated, normalized seed document.
type Seed struct {
	Apps map[string]map[string]string `yaml:"apps"`
}

// Entry is one (namespace, key, value) triple from a seed document.
type Entry struct {
	App   string
	Key   string
	Value string
}

// Load reads, validates, and normalizes a seed file.
//
// Validation happens on the raw YAML value, so a bare integer or nested
// block is reported with its path instead of silently coerced. Namespaces
// and keys are NFC-normalized before they reach the store; the store
// itself treats identifiers as opaque, so normalization is this caller's
// job. Values are left byte-for-byte as written.
func Load(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse validates and normalizes a seed document held in memory.
func Parse(data []byte) (*Seed, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse seed YAML: %w", err)
	}
	if raw == nil {
		// An empty document is a valid, empty seed.
		return &Seed{Apps: map[string]map[string]string{}}, nil
	}

	if err := validate(raw); err != nil {
		return nil, err
	}

	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode seed YAML: %w", err)
	}

	normalized := make(map[string]map[string]string, len(s.Apps))
	for app, entries := range s.Apps {
		keys := make(map[string]string, len(entries))
		for key, value := range entries {
			keys[norm.NFC.String(key)] = value
		}
		normalized[norm.NFC.String(app)] = keys
	}
	s.Apps = normalized

	return &s, nil
}

// validate unifies the raw document with the closed seed schema.
func validate(raw map[string]any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(seedSchema).LookupPath(cue.ParsePath("#Seed"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile seed schema: %w", err)
	}

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("encode seed document: %w", err)
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("seed document does not match schema: %w", err)
	}
	return nil
}

// Entries returns every triple of the seed sorted by (app, key), so
// applying a seed is deterministic.
func (s *Seed) Entries() []Entry {
	apps := make([]string, 0, len(s.Apps))
	for app := range s.Apps {
		apps = append(apps, app)
	}
	sort.Strings(apps)

	var entries []Entry
	for _, app := range apps {
		keys := make([]string, 0, len(s.Apps[app]))
		for key := range s.Apps[app] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			entries = append(entries, Entry{App: app, Key: key, Value: s.Apps[app][key]})
		}
	}
	return entries
}
