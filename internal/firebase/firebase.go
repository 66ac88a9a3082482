package firebase

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
)

//FirestoreClient -_-
var FirestoreClient *firestore.Client

func init() {
	ctx := context.Background()

	projectID, exists := os.LookupEnv("PROJECT_ID")
	if exists && projectID == "NOOP" {
		log.Printf("Mocking Firebase")
		return
	}

	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		log.Fatalf("firebase.NewApp: %v", err)
	}

	FirestoreClient, err = app.Firestore(ctx)
	if err != nil {
		log.Fatalf("app.Firestore: %v", err)
	}
}
