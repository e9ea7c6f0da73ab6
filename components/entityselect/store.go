package entityselect

import (
	"context"
	"errors"
	"net/http"

	"github.com/goliatone/go-entityselect/pkg/persistence"
)

// Store is the persistence surface the component reads from.
type Store interface {
	persistence.Context
	persistence.Searcher
}

// StoreFunc resolves the store for a request. Implementations backed by a
// unit of work should hand out one session per request.
type StoreFunc func(ctx context.Context) (Store, error)

// StaticStore returns a StoreFunc that always yields store.
func StaticStore(store Store) StoreFunc {
	return func(context.Context) (Store, error) {
		if store == nil {
			return nil, errors.New("entityselect: store is nil")
		}
		return store, nil
	}
}

type storeKey struct{}

// ContextWithStore attaches store to ctx. Component lookups prefer a store on
// the context over the configured StoreFunc so binding and persisting share
// one identity map.
func ContextWithStore(ctx context.Context, store Store) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, storeKey{}, store)
}

// StoreFromContext returns the store attached by ContextWithStore.
func StoreFromContext(ctx context.Context) (Store, bool) {
	if ctx == nil {
		return nil, false
	}
	store, ok := ctx.Value(storeKey{}).(Store)
	return store, ok && store != nil
}

// Middleware resolves a store per request through stores and attaches it to
// the request context.
func Middleware(stores StoreFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if stores == nil {
				next.ServeHTTP(w, r)
				return
			}
			store, err := stores(r.Context())
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithStore(r.Context(), store)))
		})
	}
}
