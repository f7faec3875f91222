package appconf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// privateSuffix is appended to the primary file's stem to name the companion
// private file: config.yaml -> config_private.yaml.
const privateSuffix = "_private"

// privateSection is the top-level key stripped from the effective document
// after interpolation.
const privateSection = "private"

// LoadStore reads a hierarchical config document and returns it as a Store.
//
// The format is detected from the extension, falling back to content
// sniffing. A companion <stem>_private.<ext> file beside the primary is
// deep-merged over it when present. ${path.to.key} interpolations are then
// resolved against the merged tree, and the top-level "private" section is
// stripped. An interpolation referencing an unresolved key under the private
// namespace surfaces as a *PrivateConfigError naming both files; other
// interpolation failures propagate as-is.
func LoadStore(path string) (*Store, error) {
	tree, _, err := loadTree(path)
	if err != nil {
		return nil, err
	}
	return NewStore(tree), nil
}

func loadTree(path string) (map[string]any, string, error) {
	tree, format, err := readDocument(path)
	if err != nil {
		return nil, "", err
	}

	privatePath := companionPrivatePath(path)
	if _, err := os.Stat(privatePath); err == nil {
		overlay, _, err := readDocument(privatePath)
		if err != nil {
			return nil, "", err
		}
		tree = deepMerge(tree, overlay)
	}

	if err := resolveInterpolations(tree, path, privatePath); err != nil {
		return nil, "", err
	}

	delete(tree, privateSection)
	return tree, format, nil
}

// companionPrivatePath derives the private companion's path from the primary:
// same directory, same extension, stem plus the private suffix.
func companionPrivatePath(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return stem + privateSuffix + ext
}

// readDocument reads and parses a single config file into a document tree.
func readDocument(path string) (map[string]any, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, "", fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
		if format == "" {
			return nil, "", fmt.Errorf("unable to determine config format for file %q", path)
		}
	}

	tree := make(map[string]any)
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, "", fmt.Errorf("failed to parse YAML config file %q: %w", path, err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, "", fmt.Errorf("failed to parse TOML config file %q: %w", path, err)
		}
	case "json":
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, "", fmt.Errorf("failed to parse JSON config file %q: %w", path, err)
		}
	}
	return tree, format, nil
}

// detectFileFormat determines format from the file extension.
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing.
func detectFormatFromContent(data []byte) string {
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}
	// YAML is a superset of JSON, so check after JSON.
	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}
	var tomlTest any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}
	return ""
}

var interpPattern = regexp.MustCompile(`\$\{([^${}]+)\}`)

// interpolator resolves ${...} references within a document tree in place.
type interpolator struct {
	root        map[string]any
	resolving   map[string]bool
	configFile  string
	privateFile string
}

func resolveInterpolations(tree map[string]any, configFile, privateFile string) error {
	in := &interpolator{
		root:        tree,
		resolving:   make(map[string]bool),
		configFile:  configFile,
		privateFile: privateFile,
	}
	// resolveNode rewrites map and list entries in place.
	_, err := in.resolveNode(tree)
	return err
}

func (in *interpolator) resolveNode(node any) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		for key, value := range n {
			resolved, err := in.resolveNode(value)
			if err != nil {
				return nil, err
			}
			n[key] = resolved
		}
		return n, nil
	case []any:
		for i, value := range n {
			resolved, err := in.resolveNode(value)
			if err != nil {
				return nil, err
			}
			n[i] = resolved
		}
		return n, nil
	case string:
		return in.resolveString(n)
	default:
		return node, nil
	}
}

func (in *interpolator) resolveString(s string) (any, error) {
	matches := interpPattern.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s, nil
	}

	// A whole-string reference preserves the referenced value's type.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(s) {
		return in.resolveKey(s[matches[0][2]:matches[0][3]])
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		key := s[m[2]:m[3]]
		value, err := in.resolveKey(key)
		if err != nil {
			return nil, err
		}
		// Only scalars can be spliced into a surrounding string.
		switch value.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("interpolation key %q in %q refers to a %s and cannot be embedded in a string",
				key, in.configFile, nodeKind(value))
		}
		fmt.Fprintf(&b, "%v", value)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

func nodeKind(value any) string {
	if _, ok := value.(map[string]any); ok {
		return "mapping"
	}
	return "list"
}

func (in *interpolator) resolveKey(key string) (any, error) {
	key = strings.TrimSpace(key)
	if in.resolving[key] {
		return nil, fmt.Errorf("%w involving key %q in %q", ErrInterpolationCycle, key, in.configFile)
	}

	value, exists := selectPath(in.root, key)
	if !exists {
		if key == privateSection || strings.HasPrefix(key, privateSection+".") {
			return nil, &PrivateConfigError{Key: key, ConfigFile: in.configFile, PrivateFile: in.privateFile}
		}
		return nil, fmt.Errorf("interpolation key %q not found in %q", key, in.configFile)
	}

	in.resolving[key] = true
	defer delete(in.resolving, key)
	return in.resolveNode(value)
}

// StoreProvider is the BackingStore variant of Provider: a loaded document
// tree plus its origin path, supporting set and save.
type StoreProvider struct {
	store  *Store
	path   string
	format string
}

// NewStoreProvider loads the config file at path into a writable provider.
func NewStoreProvider(path string) (*StoreProvider, error) {
	tree, format, err := loadTree(path)
	if err != nil {
		return nil, err
	}
	return &StoreProvider{store: NewStore(tree), path: path, format: format}, nil
}

// NewStoreProviderFromTree wraps an already-parsed document tree. The
// provider has no origin path, so Save requires an explicit path. Saves use
// YAML.
func NewStoreProviderFromTree(tree map[string]any) *StoreProvider {
	return &StoreProvider{store: NewStore(tree), format: "yaml"}
}

// Store returns the underlying document store.
func (p *StoreProvider) Store() *Store { return p.store }

// Path returns the origin path, or "" for a tree-backed provider.
func (p *StoreProvider) Path() string { return p.path }

// BindKey maps a bind to its store path.
func (p *StoreProvider) BindKey(b *Bind) string { return b.StorePath() }

// Get returns the value at the dot-separated key, or nil.
func (p *StoreProvider) Get(key string) any { return p.store.Select(key) }

// Set writes value at the dot-separated key.
func (p *StoreProvider) Set(key string, value any) error { return p.store.SetPath(key, value) }

// Contains reports whether the key path exists.
func (p *StoreProvider) Contains(key string) bool { return p.store.Contains(key) }

// Save writes the current tree back to disk atomically, overwriting. An
// empty path saves in place to the origin path.
func (p *StoreProvider) Save(path string) error {
	if path == "" {
		path = p.path
	}
	if path == "" {
		return fmt.Errorf("no save path: store was not loaded from a file")
	}

	format := detectFileFormat(path)
	if format == "" {
		format = p.format
	}

	var data []byte
	var err error
	switch format {
	case "yaml":
		data, err = yaml.Marshal(p.store.Root())
	case "toml":
		var buf bytes.Buffer
		encoder := toml.NewEncoder(&buf)
		err = encoder.Encode(p.store.Root())
		data = buf.Bytes()
	case "json":
		data, err = json.MarshalIndent(p.store.Root(), "", "  ")
	default:
		return fmt.Errorf("unable to determine config format for file %q", path)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config data: %w", err)
	}

	return atomicWriteFile(path, data)
}

// atomicWriteFile writes data via a temp file and rename so a crash mid-write
// never leaves a truncated config behind.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory %q: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary config file in %q: %w", dir, err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // no-op after a successful rename

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temp config file %q: %w", tempPath, err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temp config file %q: %w", tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp config file %q: %w", tempPath, err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on temp config file %q: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %q: %w", path, err)
	}

	return nil
}
