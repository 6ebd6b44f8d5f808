package trade

import "context"

// Store is the persistence boundary. Save inserts when the ID is unknown and
// fully overwrites otherwise. Settings returns DefaultSettings when nothing
// has been saved yet.
type Store interface {
	All(ctx context.Context) ([]Trade, error)
	Save(ctx context.Context, t Trade) (Trade, error)
	Delete(ctx context.Context, id string) error
	Settings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
	Close() error
}
