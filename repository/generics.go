package repository

import (
	"context"
	"fmt"

	"github.com/estore/estore/condition"
	"github.com/estore/estore/entity"
)

// Of is the typed sugar over Repository, playing the role gorm's
// generics.go G[T] plays over the untyped *DB: every method here just
// asserts the Entity return value down to T, so callers working with a
// single registered type never see the entity.Entity interface directly.
type Of[T entity.Entity] struct {
	*Repository
}

// Generic wraps r as a typed front end for T. T must be the same concrete
// type r's Factory produces.
func Generic[T entity.Entity](r *Repository) Of[T] {
	return Of[T]{Repository: r}
}

func (r Of[T]) assert(e entity.Entity) (T, error) {
	var zero T
	if e == nil {
		return zero, nil
	}
	t, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("repository: entity %T is not a %T", e, zero)
	}
	return t, nil
}

func (r Of[T]) SelectByID(ctx context.Context, id any, rules entity.ResolutionRules) (T, error) {
	e, err := r.Repository.SelectByID(ctx, id, rules)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.assert(e)
}

func (r Of[T]) Select(ctx context.Context, matcher *condition.Query, params condition.Params, rules entity.ResolutionRules) ([]T, error) {
	es, err := r.Repository.Select(ctx, matcher, params, rules)
	if err != nil {
		return nil, err
	}
	return assertAll[T](es)
}

func (r Of[T]) SelectByQuery(ctx context.Context, text string, params condition.Params, rules entity.ResolutionRules) ([]T, error) {
	es, err := r.Repository.SelectByQuery(ctx, text, params, rules)
	if err != nil {
		return nil, err
	}
	return assertAll[T](es)
}

func (r Of[T]) Store(ctx context.Context, e T) (any, error) {
	return r.Repository.Store(ctx, e)
}

func (r Of[T]) Delete(ctx context.Context, matcher *condition.Query, params condition.Params) ([]T, error) {
	es, err := r.Repository.Delete(ctx, matcher, params)
	if err != nil {
		return nil, err
	}
	return assertAll[T](es)
}

func (r Of[T]) DeleteEntityCascade(ctx context.Context, e T) ([]entity.Entity, error) {
	return r.Repository.DeleteEntityCascade(ctx, e)
}

func assertAll[T entity.Entity](es []entity.Entity) ([]T, error) {
	out := make([]T, 0, len(es))
	for _, e := range es {
		t, ok := e.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("repository: entity %T is not a %T", e, zero)
		}
		out = append(out, t)
	}
	return out, nil
}
