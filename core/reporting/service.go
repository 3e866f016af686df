// Package reporting turns a report name and a set of input tables into a
// dynamic report query and the job definition that runs it, emitting build
// events that callers can subscribe to.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/asaidimu/go-adhquery/core/catalog"
	"github.com/asaidimu/go-adhquery/core/query"
	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnknownReport   = errors.New("unsupported report type")
	ErrMissingTemplate = errors.New("no query template registered")
)

// Result is the outcome of a build. When Valid is false, Errors holds the
// report shown to the user and Job is nil.
type Result struct {
	BuildID string            `json:"buildId" yaml:"buildId"`
	Report  string            `json:"report" yaml:"report"`
	SQL     string            `json:"sql" yaml:"sql"`
	Valid   bool              `json:"valid" yaml:"valid"`
	Errors  string            `json:"errors,omitempty" yaml:"errors,omitempty"`
	Job     *AdvancedQueryJob `json:"job,omitempty" yaml:"job,omitempty"`
}

// Service generates report queries from the registered reports and templates.
type Service struct {
	reports       *catalog.Registry
	templates     *query.TemplateRegistry
	logger        *zap.Logger
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
	bus           *events.TypedEventBus[BuildEvent]
}

// NewService creates a reporting service. A nil logger disables logging.
func NewService(reports *catalog.Registry, templates *query.TemplateRegistry, logger *zap.Logger) (*Service, error) {
	if reports == nil {
		return nil, fmt.Errorf("report registry is required")
	}
	if templates == nil {
		return nil, fmt.Errorf("template registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bus, err := events.NewTypedEventBus[BuildEvent](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}

	return &Service{
		reports:       reports,
		templates:     templates,
		logger:        logger,
		subscriptions: make(map[string]*SubscriptionInfo),
		bus:           bus,
	}, nil
}

// Generate builds the query for the named report from input. Input problems
// do not fail the build: they produce a Result with Valid set to false. An
// error is returned for an unknown report, a kind without a template, or a
// cancelled context.
func (s *Service) Generate(ctx context.Context, report string, input query.InputSource) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, fmt.Errorf("input source is required")
	}

	buildID := uuid.New().String()
	logger := s.logger.With(zap.String("build", buildID), zap.String("report", report))

	var kind catalog.QueryKind
	return s.withEventEmission(buildID, report, &kind, func() (*Result, error) {
		cfg, ok := s.reports.Get(report)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownReport, report)
		}
		kind = cfg.Kind

		builder, err := query.NewQueryBuilder(input, cfg, s.templates, cfg.Kind, query.WithLogger(logger))
		if err != nil {
			return nil, err
		}

		sql, ok := builder.ADHQuery()
		if !ok {
			return nil, fmt.Errorf("%w for %s", ErrMissingTemplate, cfg.Kind)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := &Result{BuildID: buildID, Report: cfg.Name, SQL: sql}
		messages := builder.ErrorMessages()

		job := NewAdvancedQueryJob(cfg.Name, sql)
		if err := job.ResolveParams(cfg, input.ReportParams()); err != nil {
			messages = joinReports(messages, "Report Parameter Errors:\n"+err.Error())
		}

		if messages != "" {
			result.Errors = messages
			logger.Info("Query built with input errors", zap.String("errors", messages))
			return result, nil
		}

		result.Valid = true
		result.Job = job
		logger.Info("Query built", zap.String("kind", string(cfg.Kind)))
		return result, nil
	})
}

func joinReports(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}

// Reports lists the registered reports in name order.
func (s *Service) Reports() []ReportSummary {
	names := s.reports.Names()
	out := make([]ReportSummary, 0, len(names))
	for _, name := range names {
		cfg, ok := s.reports.Get(name)
		if !ok {
			continue
		}
		_, has := s.templates.Get(cfg.Kind)
		out = append(out, ReportSummary{Name: cfg.Name, Kind: cfg.Kind, HasTemplate: has})
	}
	return out
}

// RegisterSubscription registers a callback for a build event. It returns a
// unique ID that can be used to unregister the subscription later.
func (s *Service) RegisterSubscription(options RegisterSubscriptionOptions) string {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	unsubscribe := s.bus.Subscribe(string(options.Event), options.Callback)
	id := uuid.New().String()

	s.subscriptions[id] = &SubscriptionInfo{
		Id:          &id,
		Event:       options.Event,
		Unsubscribe: unsubscribe,
		Label:       options.Label,
		Description: options.Description,
	}
	s.logger.Debug("Registered subscription", zap.String("id", id), zap.String("event", string(options.Event)))
	return id
}

// UnregisterSubscription removes a subscription by its ID.
func (s *Service) UnregisterSubscription(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if info, ok := s.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(s.subscriptions, id)
	}
}

// Subscriptions returns a list of all currently active subscriptions.
func (s *Service) Subscriptions() ([]SubscriptionInfo, error) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		subs = append(subs, *sub)
	}
	return subs, nil
}

var _ ReportingInterface = (*Service)(nil)
