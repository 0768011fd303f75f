package config

import (
	"context"

	"argware/pkg/argware"
	"argware/pkg/merge"
)

// Inject fills in defaults for every key the namespace does not hold yet.
// Nested map defaults only fill the missing sub-keys.
type Inject struct {
	argware.BaseMiddleware

	defaults map[string]any
}

// NewInject creates a default injection middleware.
func NewInject(defaults map[string]any) *Inject {
	return &Inject{defaults: defaults}
}

// Run merges the defaults under ns.
func (i *Inject) Run(_ context.Context, ns argware.Namespace) error {
	ns.Update(merge.Merge(merge.Options{Overwrite: false, Recurse: true}, ns, i.defaults))
	return nil
}
