package changeaudit

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/docuflow/firestore-events/internal/firebase/structs"
	"github.com/docuflow/firestore-events/internal/logging"
	"github.com/docuflow/firestore-events/internal/store"
	"github.com/docuflow/firestore-events/internal/utils"
	fsevent "github.com/docuflow/firestore-events/pkg/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

//AuditChange Handler
func AuditChange(ctx context.Context, event fsevent.Event) error {
	logger := logging.FromContext(ctx)

	changeType := event.ChangeType()
	if changeType == "" {
		logger.Warnf("Skipping audit of '%s', both snapshots are empty", event.Document())
		return nil
	}

	config, err := utils.LoadAuditConfig(ctx)
	if err != nil {
		return err
	}

	client := store.Client{}

	var date = utils.GetTimeNow().Format("20060102")
	key := auditKey(event.Document(), date)

	logger.Debugf("Doing change audit for '%s'", key)

	doc := client.Doc(config.Collection, key)

	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		rec, err := tx.Get(doc)

		if err != nil {
			if status.Code(err) != codes.NotFound {
				return fmt.Errorf("Error while querying Firestore: %v", err)
			}
			// not found:

			logger.Debugf("Saving default change counter")
			var counter structs.ChangeCounter
			counter.Increment(changeType)
			return tx.Set(doc, counter)
		}
		// counter for collection and day found, let's update it

		var counter structs.ChangeCounter
		if err = rec.DataTo(&counter); err != nil {
			return fmt.Errorf("Error while querying Firestore: %v", err)
		}

		logger.Debugf("Found change counter: %+v", counter)

		counter.Increment(changeType)

		logger.Debugf("Saving updated change counter for %v: %+v", key, counter)

		return tx.Set(doc, counter)
	})

	if err != nil {
		logger.Warnf("Cannot handle change audit due to unknown error: %+v", err.Error())
		return err
	}

	logger.Debugf("Change audit done for '%s'", event.Document())

	return nil
}

//auditKey Counter document ID, one per collection and day.
func auditKey(document string, date string) string {
	collection := utils.CollectionOf(document)
	if collection == "" {
		collection = "unknown"
	}
	return fmt.Sprintf("%s-%s", collection, date)
}
