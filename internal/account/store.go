package account

import "context"

// Store persists merchant profiles.
type Store interface {
	Create(ctx context.Context, p *Profile) error
	Get(ctx context.Context, id string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
}
