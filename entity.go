package estore

import "github.com/estore/estore/entity"

// Entity, ResolutionRules and FetchHook live in the entity package so the
// repository layer can depend on them without importing this package back;
// these aliases keep the familiar estore.Entity spelling at the facade.
type (
	Entity           = entity.Entity
	ResolutionRules  = entity.ResolutionRules
	FetchHook        = entity.FetchHook
)
