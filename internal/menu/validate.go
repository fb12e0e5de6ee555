package menu

import "context"

// validatedSource rejects trees whose labels collide with reserved control
// labels at load time, before the cache ever publishes them.
type validatedSource struct {
	Source
	reserved []string
}

// Validated wraps source so every load runs Tree.Validate against the
// reserved labels. A colliding tree fails the load and the cache keeps
// serving the previous one.
func Validated(source Source, reserved ...string) Source {
	return &validatedSource{Source: source, reserved: reserved}
}

func (v *validatedSource) Load(ctx context.Context) (*Tree, error) {
	tree, err := v.Source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(v.reserved...); err != nil {
		return nil, err
	}
	return tree, nil
}
