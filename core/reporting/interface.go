package reporting

import (
	"context"

	"github.com/asaidimu/go-adhquery/core/catalog"
	"github.com/asaidimu/go-adhquery/core/query"
)

// BuildEventType defines the events emitted while generating a query.
type BuildEventType string

const (
	BuildStart   BuildEventType = "build:start"
	BuildSuccess BuildEventType = "build:success"
	BuildInvalid BuildEventType = "build:invalid" // The query was built but the input had errors
	BuildFailed  BuildEventType = "build:failed"  // No query could be built
)

// BuildEvent describes one step of a query build.
type BuildEvent struct {
	Type      BuildEventType    `json:"type"`
	Timestamp int64             `json:"timestamp"` // Unix milliseconds
	BuildID   string            `json:"buildId"`
	Report    string            `json:"report"`
	Kind      catalog.QueryKind `json:"kind,omitempty"`
	Output    *Result           `json:"output,omitempty"`
	Error     *string           `json:"error,omitempty"`
	Issues    []string          `json:"issues,omitempty"`   // Error report lines, for invalid input
	Duration  *int64            `json:"duration,omitempty"` // Milliseconds since the build started
}

// EventCallbackFunction is called for each event a subscription matches.
type EventCallbackFunction func(ctx context.Context, event BuildEvent) error

// RegisterSubscriptionOptions defines options for registering a subscription.
type RegisterSubscriptionOptions struct {
	Event       BuildEventType `json:"event"`
	Label       *string        `json:"label,omitempty"`
	Description *string        `json:"description,omitempty"`
	Callback    EventCallbackFunction
}

// SubscriptionInfo describes an active subscription.
type SubscriptionInfo struct {
	Id          *string        `json:"id,omitempty"`
	Event       BuildEventType `json:"event"`
	Label       *string        `json:"label,omitempty"`
	Description *string        `json:"description,omitempty"`
	Unsubscribe func()         `json:"-"`
}

// ReportSummary describes a report available to Generate.
type ReportSummary struct {
	Name        string            `json:"name" yaml:"name"`
	Kind        catalog.QueryKind `json:"kind" yaml:"kind"`
	HasTemplate bool              `json:"hasTemplate" yaml:"hasTemplate"`
}

// ReportingInterface is the entry point for generating dynamic report queries.
type ReportingInterface interface {
	Generate(ctx context.Context, report string, input query.InputSource) (*Result, error)
	Reports() []ReportSummary

	RegisterSubscription(options RegisterSubscriptionOptions) string
	UnregisterSubscription(id string)
	Subscriptions() ([]SubscriptionInfo, error)
}
