package syncups

import (
	"time"

	"github.com/google/uuid"

	"github.com/on-the-ground/composable_ive_go/identified"
)

type Theme string

const (
	ThemeBubblegum  Theme = "bubblegum"
	ThemeButtercup  Theme = "buttercup"
	ThemeIndigo     Theme = "indigo"
	ThemeLavender   Theme = "lavender"
	ThemeMagenta    Theme = "magenta"
	ThemeNavy       Theme = "navy"
	ThemeOrange     Theme = "orange"
	ThemeOxblood    Theme = "oxblood"
	ThemePeriwinkle Theme = "periwinkle"
	ThemePoppy      Theme = "poppy"
	ThemePurple     Theme = "purple"
	ThemeSeafoam    Theme = "seafoam"
	ThemeSky        Theme = "sky"
	ThemeTan        Theme = "tan"
	ThemeTeal       Theme = "teal"
	ThemeYellow     Theme = "yellow"
)

type Attendee struct {
	ID   uuid.UUID
	Name string
}

func (a Attendee) Key() uuid.UUID { return a.ID }

type Attendees = identified.Array[uuid.UUID, Attendee]

type SyncUp struct {
	ID        uuid.UUID
	Attendees Attendees
	Duration  time.Duration
	Theme     Theme
	Title     string
}

func (s SyncUp) Key() uuid.UUID { return s.ID }

// NewSyncUp is a blank sync-up as the add sheet starts it.
func NewSyncUp(id uuid.UUID) SyncUp {
	return SyncUp{ID: id, Duration: 5 * time.Minute, Theme: ThemeBubblegum}
}

// DurationPerAttendee splits the meeting evenly.
func (s SyncUp) DurationPerAttendee() time.Duration {
	if s.Attendees.Len() == 0 {
		return s.Duration
	}
	return s.Duration / time.Duration(s.Attendees.Len())
}
