package changerelay

import (
	"context"
	"fmt"

	"github.com/docuflow/firestore-events/internal/logging"
	"github.com/docuflow/firestore-events/internal/pubsub"
	"github.com/docuflow/firestore-events/internal/utils"
	eventerrors "github.com/docuflow/firestore-events/internal/utils/errors"
	"github.com/docuflow/firestore-events/pkg/firestore"
)

//ChangePayload Message published for every document change.
type ChangePayload struct {
	Document     string   `json:"document" validate:"required"`
	ChangeType   string   `json:"changeType" validate:"required"`
	ChangedPaths []string `json:"changedPaths"`
}

//RelayChange Handler
func RelayChange(ctx context.Context, event firestore.Event) error {
	config, err := utils.LoadRelayConfig(ctx)
	if err != nil {
		return err
	}

	return relay(ctx, &event, config, pubsub.Client{})
}

func relay(ctx context.Context, event *firestore.Event, config *utils.RelayConfig, publisher pubsub.EventPublisher) error {
	logger := logging.FromContext(ctx)

	changeType := event.ChangeType()
	if changeType == "" {
		logger.Warnf("Skipping change of '%s', both snapshots are empty", event.Document())
		return nil
	}

	payload := ChangePayload{
		Document:     event.Document(),
		ChangeType:   changeType,
		ChangedPaths: event.UpdateMask.FieldPaths,
	}

	if err := utils.Validate.Struct(&payload); err != nil {
		return &eventerrors.MalformedEventError{Msg: fmt.Sprintf("Invalid change payload: %v", err)}
	}

	topic := config.TopicFor(changeType)

	logger.Debugf("Publishing %s change of '%s' to topic %s", changeType, payload.Document, topic)

	if err := publisher.Publish(topic, payload); err != nil {
		return &eventerrors.PublishError{Msg: fmt.Sprintf("Error while publishing to topic %s: %v", topic, err)}
	}

	return nil
}
