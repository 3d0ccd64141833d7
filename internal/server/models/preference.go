package models

import "time"

// PreferenceKind selects the catalog entity a preference refers to.
type PreferenceKind string

const (
	PreferenceGenre  PreferenceKind = "genre"
	PreferenceArtist PreferenceKind = "artist"
)

func (k PreferenceKind) Valid() bool {
	return k == PreferenceGenre || k == PreferenceArtist
}

// PreferenceItem is one requested (entity, level) pair of an update batch.
// Level runs from 1 (mild) to 5 (strongest).
type PreferenceItem struct {
	EntityID int64 `validate:"gt=0"`
	Level    int   `validate:"min=1,max=5"`
}

// Preference is a stored affinity of an owner for a genre or an artist.
// EntityName is filled from the catalog on reads.
type Preference struct {
	OwnerID    string
	Kind       PreferenceKind
	EntityID   int64
	EntityName string
	Level      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
