package views

import (
	"fmt"
	"log/slog"

	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/query"
	"finboard/internal/store"
)

// TransactionPager serves transaction pages from the store, reusing pages
// computed for the current revision.
type TransactionPager struct {
	store       *store.Store
	pages       cache.Cache[query.Page[core.Transaction]]
	logger      *slog.Logger
	unsubscribe func()
}

// NewTransactionPager wires a pager to s. Close releases the subscription.
func NewTransactionPager(s *store.Store, pages cache.Cache[query.Page[core.Transaction]], logger *slog.Logger) *TransactionPager {
	p := &TransactionPager{
		store:  s,
		pages:  pages,
		logger: log.WithComponent(logger, log.ComponentViews),
	}
	p.unsubscribe = s.Subscribe(func(c store.Change) {
		p.pages.Purge()
		p.logger.Debug("Transaction pages invalidated", log.FieldRevision, c.Revision)
	})
	return p
}

// Page returns the requested transactions page.
func (p *TransactionPager) Page(req TransactionRequest) (query.Page[core.Transaction], error) {
	d, rev := p.store.Current()
	req = req.normalized()
	key := fmt.Sprintf("%d|%s", rev, req.key())

	if page, ok := p.pages.Get(key); ok {
		return clonePage(page), nil
	}
	page, err := Transactions(d, req)
	if err != nil {
		return page, err
	}
	p.pages.Set(key, page)
	p.logger.Debug("Transaction page computed", log.FieldCacheKey, key, "count", len(page.Items))
	return clonePage(page), nil
}

func (p *TransactionPager) Close() {
	p.unsubscribe()
}

func clonePage[T any](pg query.Page[T]) query.Page[T] {
	pg.Items = append(make([]T, 0, len(pg.Items)), pg.Items...)
	return pg
}
