package driven

import "github.com/lightway-xas/lightway/internal/core/domain"

// RecordValidator enforces record invariants before a write.
// Both methods return a *domain.ValidationError listing every violation.
type RecordValidator interface {
	// ValidateChannel checks a derived channel record: required columns,
	// strictly increasing energy, and required metadata keys.
	ValidateChannel(rec *domain.ChannelRecord) error

	// ValidateDocument checks a store-shaped record against the typed schema.
	ValidateDocument(structureFamily string, data *domain.Table, metadata map[string]any) error
}
