package query

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/asaidimu/go-adhquery/core/catalog"
	"go.uber.org/zap"
)

// Placeholder tokens replaced in query templates. Each may appear any number
// of times; every occurrence is replaced.
const (
	GroupingPlaceholder = "__DYNAMIC_REPORTING_GROUPING_TAG__"
	FiltersPlaceholder  = "__DYNAMIC_REPORTING_FILTERS_TAG__"
	SetNamePlaceholder  = "__DYNAMIC_REPORTING__SET_NAME_TAG__"
)

//go:embed templates/*.sql
var builtinTemplates embed.FS

// TemplateRegistry maps query kinds to template text.
type TemplateRegistry struct {
	templates map[catalog.QueryKind]string
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewTemplateRegistry returns an empty registry.
func NewTemplateRegistry(logger *zap.Logger) *TemplateRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateRegistry{
		templates: make(map[catalog.QueryKind]string),
		logger:    logger,
	}
}

// DefaultTemplates returns a registry holding the built-in templates. The
// file name of each embedded template, minus ".sql", is its query kind.
func DefaultTemplates(logger *zap.Logger) (*TemplateRegistry, error) {
	r := NewTemplateRegistry(logger)
	if err := r.loadFS(builtinTemplates, "templates"); err != nil {
		return nil, fmt.Errorf("failed to load built-in templates: %w", err)
	}
	return r, nil
}

// Register adds or replaces the template for kind. The text must contain at
// least one known placeholder.
func (r *TemplateRegistry) Register(kind catalog.QueryKind, text string) error {
	if kind == "" {
		return fmt.Errorf("query kind is required")
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("template for %s is empty", kind)
	}
	if !strings.Contains(text, GroupingPlaceholder) &&
		!strings.Contains(text, FiltersPlaceholder) &&
		!strings.Contains(text, SetNamePlaceholder) {
		return fmt.Errorf("template for %s contains no placeholders", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[kind] = text
	r.logger.Info("Registered query template", zap.String("kind", string(kind)), zap.Int("bytes", len(text)))
	return nil
}

// Get returns the template registered for kind.
func (r *TemplateRegistry) Get(kind catalog.QueryKind) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	text, ok := r.templates[kind]
	return text, ok
}

// Kinds returns the registered kinds, sorted.
func (r *TemplateRegistry) Kinds() []catalog.QueryKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]catalog.QueryKind, 0, len(r.templates))
	for k := range r.templates {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// LoadDir registers every <kind>.sql file in dir, replacing built-ins of the
// same kind.
func (r *TemplateRegistry) LoadDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to read templates directory %s: %w", dir, err)
	}
	return r.loadFS(os.DirFS(filepath.Clean(dir)), ".")
}

func (r *TemplateRegistry) loadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", entry.Name(), err)
		}
		kind := catalog.QueryKind(strings.TrimSuffix(entry.Name(), ".sql"))
		if err := r.Register(kind, string(data)); err != nil {
			return err
		}
	}
	return nil
}
