// Package dependencies holds the injectable collaborators of effects: time,
// identifiers and the network. Reducers receive a Dependencies value when they are
// constructed, so tests swap in deterministic implementations.
package dependencies

import (
	"time"

	"github.com/on-the-ground/composable_ive_go/config"
)

type Dependencies struct {
	Clock Clock
	UUID  UUIDGenerator
	Fact  FactClient
}

// Live wires the production implementations described by cfg.
func Live(cfg config.Config) Dependencies {
	return Dependencies{
		Clock: SystemClock(),
		UUID:  LiveUUID(),
		Fact:  NewHTTPFactClient(cfg.Fact.BaseURL, cfg.Fact.Timeout),
	}
}

// Test returns deterministic implementations: a TestClock at the Unix epoch,
// incrementing UUIDs and a static fact client.
func Test() Dependencies {
	return Dependencies{
		Clock: NewTestClock(time.Unix(0, 0).UTC()),
		UUID:  NewIncrementingUUID(),
		Fact:  StaticFact(),
	}
}

// With returns a copy of d with the non-nil fields of override applied.
func (d Dependencies) With(override Dependencies) Dependencies {
	if override.Clock != nil {
		d.Clock = override.Clock
	}
	if override.UUID != nil {
		d.UUID = override.UUID
	}
	if override.Fact != nil {
		d.Fact = override.Fact
	}
	return d
}
