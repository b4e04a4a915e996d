package loaders

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders batches lab and test lookups made while expanding a response.
// A fresh set is attached to every request.
type Loaders struct {
	LabLoader  *dataloader.Loader[string, *entities.Lab]
	TestLoader *dataloader.Loader[string, *entities.Test]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(labRepo repositories.LabRepository, testRepo repositories.TestRepository) *Loaders {
	return &Loaders{
		LabLoader: dataloader.NewBatchedLoader(
			batchByID(labRepo.GetByIDs, func(l *entities.Lab) string { return l.ID }, "lab"),
		),
		TestLoader: dataloader.NewBatchedLoader(
			batchByID(testRepo.GetByIDs, func(t *entities.Test) string { return t.ID }, "test"),
		),
	}
}

func batchByID[V any](
	fetch func(context.Context, []string) ([]V, error),
	idOf func(V) string,
	kind string,
) dataloader.BatchFunc[string, V] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[V] {
		results := make([]*dataloader.Result[V], len(keys))
		values, err := fetch(ctx, keys)

		byID := make(map[string]V, len(values))
		if err == nil {
			for _, v := range values {
				byID[idOf(v)] = v
			}
		}

		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[V]{Error: err}
			} else if v, ok := byID[key]; ok {
				results[i] = &dataloader.Result[V]{Data: v}
			} else {
				results[i] = &dataloader.Result[V]{Error: apperrors.NewNotFoundError(kind + " " + key + " not found")}
			}
		}
		return results
	}
}

// For returns the loaders attached to ctx, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
