package reference

import (
	"fmt"

	"github.com/estore/estore/entity"
)

// List is EntityReferenceList<T>: a parallel ids/entities
// pair, equal length and positionally aligned whenever both are populated.
// A hole (an id with no corresponding loaded entity yet) is represented by
// a nil entry in entities.
type List struct {
	entityType string
	hook       func(ids []any, entityType string) ([]entity.Entity, error)
	ids        []any
	entities   []entity.Entity
}

// NewList constructs an empty list fetched in batches through hook.
func NewList(entityType string, hook func(ids []any, entityType string) ([]entity.Entity, error)) *List {
	return &List{entityType: entityType, hook: hook}
}

// IDs returns the current identifier list, deriving each id from its loaded
// entity when the ids slice itself hasn't been populated yet (a nil entity
// gives a nil id).
func (l *List) IDs() []any {
	if l.ids != nil {
		return l.ids
	}
	ids := make([]any, len(l.entities))
	for i, e := range l.entities {
		if e != nil {
			ids[i] = e.EntityID()
		}
	}
	return ids
}

// Len reports the list's length.
func (l *List) Len() int {
	if l.ids != nil {
		return len(l.ids)
	}
	return len(l.entities)
}

// Add appends id to the list, leaving a hole in entities until fetched.
func (l *List) Add(id any) {
	l.ids = append(l.ids, id)
	l.entities = append(l.entities, nil)
}

// AddEntity appends an already-loaded entity.
func (l *List) AddEntity(e entity.Entity) {
	l.ids = append(l.ids, e.EntityID())
	l.entities = append(l.entities, e)
}

// Remove deletes the element at index from both lists.
func (l *List) Remove(index int) {
	if index < 0 || index >= l.Len() {
		return
	}
	if l.ids != nil {
		l.ids = append(l.ids[:index], l.ids[index+1:]...)
	}
	if l.entities != nil {
		l.entities = append(l.entities[:index], l.entities[index+1:]...)
	}
}

// GetAt lazily fetches the entity at index if it's currently a hole.
func (l *List) GetAt(index int) (entity.Entity, error) {
	if index < 0 || index >= len(l.entities) {
		return nil, fmt.Errorf("reference: index %d out of range", index)
	}
	if l.entities[index] != nil {
		return l.entities[index], nil
	}
	if l.hook == nil {
		return nil, nil
	}
	fetched, err := l.hook([]any{l.ids[index]}, l.entityType)
	if err != nil {
		return nil, &FetchFailedError{EntityType: l.entityType, ID: l.ids[index], Cause: err}
	}
	if len(fetched) == 0 {
		return nil, nil
	}
	l.entities[index] = fetched[0]
	return fetched[0], nil
}

// Refresh fetches every hole in entities in a single batch call.
func (l *List) Refresh() error {
	var holes []any
	var positions []int
	for i, e := range l.entities {
		if e == nil {
			holes = append(holes, l.ids[i])
			positions = append(positions, i)
		}
	}
	if len(holes) == 0 || l.hook == nil {
		return nil
	}
	fetched, err := l.hook(holes, l.entityType)
	if err != nil {
		return &FetchFailedError{EntityType: l.entityType, ID: holes, Cause: err}
	}
	for i, e := range fetched {
		if i < len(positions) {
			l.entities[positions[i]] = e
		}
	}
	return nil
}

// ToJSON renders {"EntityReferenceList": type, "ids": [...], "entities": [...]}
//; entities entries are null for holes.
func (l *List) ToJSON() map[string]any {
	entities := make([]any, len(l.entities))
	for i, e := range l.entities {
		if e != nil {
			entities[i] = e.ToJSON()
		}
	}
	return map[string]any{
		"EntityReferenceList": l.entityType,
		"ids":                 l.IDs(),
		"entities":            entities,
	}
}
