package reporting

import (
	"strings"
	"time"

	"github.com/asaidimu/go-adhquery/core/catalog"
)

// emitEvent is a helper method to emit events
func (s *Service) emitEvent(event BuildEvent) {
	if s.bus != nil {
		s.bus.Emit(string(event.Type), event)
	}
}

// withEventEmission wraps a build with start, and then success, invalid or
// failure events. kind is resolved by fn and read after it returns.
func (s *Service) withEventEmission(
	buildID string,
	report string,
	kind *catalog.QueryKind,
	fn func() (*Result, error),
) (*Result, error) {
	startTime := time.Now()

	s.emitEvent(createEvent(BuildStart, buildID, report, "", nil, nil, nil, startTime))

	result, err := fn()
	if err != nil {
		errStr := err.Error()
		s.emitEvent(createEvent(BuildFailed, buildID, report, *kind, nil, &errStr, nil, startTime))
		return nil, err
	}

	if !result.Valid {
		issues := strings.Split(result.Errors, "\n")
		s.emitEvent(createEvent(BuildInvalid, buildID, report, *kind, result, nil, issues, startTime))
		return result, nil
	}

	s.emitEvent(createEvent(BuildSuccess, buildID, report, *kind, result, nil, nil, startTime))
	return result, nil
}
