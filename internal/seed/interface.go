package seed

import (
	"context"

	"finboard/internal/core"
)

// Source produces a validated dataset. The app layer depends on this
// interface, not on a concrete loader.
//
//go:generate mockgen -destination=mocks/mock_source.go -source=interface.go Source
type Source interface {
	Load(ctx context.Context) (core.Dataset, error)
}
