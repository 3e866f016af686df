package reporting

import (
	"time"

	"github.com/asaidimu/go-adhquery/core/catalog"
)

func createEvent(
	eventType BuildEventType,
	buildID string,
	report string,
	kind catalog.QueryKind,
	output *Result,
	err *string,
	issues []string,
	startTime time.Time,
) BuildEvent {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	return BuildEvent{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		BuildID:   buildID,
		Report:    report,
		Kind:      kind,
		Output:    output,
		Error:     err,
		Issues:    issues,
		Duration:  duration,
	}
}
