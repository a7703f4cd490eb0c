// Package records stores per-user collections of the local mirror under a
// composite (purpose, owner) key. Values are opaque JSON documents; callers
// replace whole collections.
package records

import "context"

// Purpose names a per-user collection.
type Purpose string

const (
	PurposeTasks        Purpose = "tasks"
	PurposeArchive      Purpose = "archive"
	PurposeReminders    Purpose = "reminders"
	PurposeProfileImage Purpose = "profile_image"
	PurposeTheme        Purpose = "theme"
	PurposeTutorialSeen Purpose = "tutorial_seen"
)

// Key identifies one stored value.
type Key struct {
	Purpose Purpose
	Owner   string
}

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key Key) ([]byte, error)
	Put(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, key Key) error
	// Purposes lists which purposes hold a value for owner.
	Purposes(ctx context.Context, owner string) ([]Purpose, error)
}
