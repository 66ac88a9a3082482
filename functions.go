// Package functions exposes the Cloud Function entrypoints.
package functions

import (
	"context"

	"github.com/docuflow/firestore-events/internal/functions/changeaudit"
	"github.com/docuflow/firestore-events/internal/functions/changerelay"
	"github.com/docuflow/firestore-events/pkg/firestore"
)

// RelayDocumentChange Change relay handler.
func RelayDocumentChange(ctx context.Context, e firestore.Event) error {
	return changerelay.RelayChange(ctx, e)
}

// AuditDocumentChange Change audit handler.
func AuditDocumentChange(ctx context.Context, e firestore.Event) error {
	return changeaudit.AuditChange(ctx, e)
}
