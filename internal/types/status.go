package types

// Status is a type for the lifecycle status of a persisted resource.
// Rows with StatusDeleted are soft-deleted and excluded from queries.
// Any changes to this type should be reflected in the database schema by running migrations
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)
