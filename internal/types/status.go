package types

// Status is a type for the lifecycle status of a persisted resource.
// This is used to soft-delete records and exclude them from queries.
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
	StatusArchived  Status = "archived"
)

func (s Status) String() string {
	return string(s)
}
