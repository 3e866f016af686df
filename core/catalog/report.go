package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ReportConfig describes one dynamic report: which template it is built
// from, which parameters it collects and which filters its grouping and
// optional-filter tables accept.
type ReportConfig struct {
	Name                  string        `yaml:"name"`
	Kind                  QueryKind     `yaml:"kind"`
	ReportParams          []ReportParam `yaml:"reportParams"`
	GroupingParams        FilterParams  `yaml:"groupingParams"`
	OptionalFiltersParams FilterParams  `yaml:"optionalFiltersParams"`

	grouping        *FilterCatalog
	optionalFilters *FilterCatalog
}

// Resolve validates the configuration and builds its filter catalogs. It
// must be called before the config is handed to a query builder; configs
// returned by this package are already resolved.
func (r *ReportConfig) Resolve() error {
	var err error
	if strings.TrimSpace(r.Name) == "" {
		err = multierr.Append(err, fmt.Errorf("report name is required"))
	}
	if r.Kind == "" {
		err = multierr.Append(err, fmt.Errorf("report %q: query kind is required", r.Name))
	}

	for i, p := range r.ReportParams {
		if p.ValueType != "" && !p.ValueType.known() {
			err = multierr.Append(err, fmt.Errorf("report param %d (%s): unknown value type %q", i, p.DisplayName, p.ValueType))
		}
	}

	grouping, gErr := NewFilterCatalog(r.GroupingParams)
	if gErr != nil {
		err = multierr.Append(err, fmt.Errorf("groupingParams: %w", gErr))
	}
	optional, oErr := NewFilterCatalog(r.OptionalFiltersParams)
	if oErr != nil {
		err = multierr.Append(err, fmt.Errorf("optionalFiltersParams: %w", oErr))
	}
	if err != nil {
		return err
	}

	r.grouping = grouping
	r.optionalFilters = optional
	return nil
}

// Grouping returns the catalog grouping rows are validated against.
func (r *ReportConfig) Grouping() *FilterCatalog {
	return r.grouping
}

// OptionalFilters returns the catalog optional-filter rows are validated against.
func (r *ReportConfig) OptionalFilters() *FilterCatalog {
	return r.optionalFilters
}

// LoadReportConfig parses a YAML report definition and resolves it.
func LoadReportConfig(data []byte) (*ReportConfig, error) {
	var r ReportConfig
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report config: %w", err)
	}
	if err := r.Resolve(); err != nil {
		return nil, fmt.Errorf("invalid report config: %w", err)
	}
	return &r, nil
}

// Registry holds the reports available by display name.
type Registry struct {
	mu      sync.RWMutex
	reports map[string]*ReportConfig
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{reports: make(map[string]*ReportConfig)}
}

// DefaultRegistry returns a registry populated with the built-in dynamic reports.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, cfg := range BuiltinReports() {
		if err := r.Register(cfg); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds or replaces a report. Unresolved configs are resolved first.
func (r *Registry) Register(cfg *ReportConfig) error {
	if cfg == nil {
		return fmt.Errorf("report config cannot be nil")
	}
	if cfg.grouping == nil || cfg.optionalFilters == nil {
		if err := cfg.Resolve(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[cfg.Name] = cfg
	return nil
}

// Get looks up a report by display name.
func (r *Registry) Get(name string) (*ReportConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.reports[name]
	return cfg, ok
}

// Names returns the registered report names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.reports))
	for name := range r.reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadDir registers every *.yaml and *.yml report definition found in dir.
// Files that fail to load are collected into the returned error; the rest
// are still registered.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read reports directory %s: %w", dir, err)
	}

	var errs error
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		cfg, err := LoadReportConfig(data)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		errs = multierr.Append(errs, r.Register(cfg))
	}
	return errs
}
