package firestore

import (
	"context"

	"github.com/docuflow/firestore-events/internal/logging"
	"go.uber.org/zap"
)

//Severity Severity of a recorded diagnostic.
type Severity int

const (
	//SeverityWarning A degraded lookup which is expected for foreign document schemas.
	SeverityWarning Severity = iota
	//SeverityError A malformed payload or an unsatisfiable request.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

//Recorder Sink for diagnostics emitted by fault-tolerant lookups.
type Recorder interface {
	Record(severity Severity, message string)
}

//LoggingRecorder Recorder writing through the zap logger.
type LoggingRecorder struct {
	Logger *zap.SugaredLogger
}

//Record Record single diagnostic.
func (r LoggingRecorder) Record(severity Severity, message string) {
	logger := r.Logger
	if logger == nil {
		logger = logging.FromContext(context.Background())
	}

	if severity == SeverityError {
		logger.Error(message)
	} else {
		logger.Warn(message)
	}
}
