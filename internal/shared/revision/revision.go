package revision

import "time"

// Entry is one row of the revision log: the serialized before-image of an
// entity captured inside the transaction that mutated it. Entries for a given
// entity are totally ordered by Sequence, which increases monotonically.
type Entry struct {
	Sequence   int64
	EntityType string
	EntityID   string
	// FieldDict is the entity's state before the commit, keyed by field name.
	FieldDict  map[string]any
	UserID     string
	RecordedAt time.Time
}
