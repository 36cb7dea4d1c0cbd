package contacts

import "github.com/google/uuid"

type Contact struct {
	ID   uuid.UUID
	Name string
}

func (c Contact) Key() uuid.UUID { return c.ID }
