package calendar_date

import (
	"context"
	"errors"

	"github.com/nichecal/nichecal/pkg/niche"
	"github.com/nichecal/nichecal/pkg/notify"
	log "github.com/sirupsen/logrus"
)

var ErrNoNicheSelected = errors.New("no niche selected")

type Fetcher struct {
	store    Store
	notifier notify.Notifier
}

func NewFetcher(store Store, notifier notify.Notifier) *Fetcher {
	return &Fetcher{store: store, notifier: notifier}
}

// FetchDatesForNiches loads the calendar dates tagged with the given niches.
// Backend errors are returned unchanged after a fetch-failure notification.
func (f *Fetcher) FetchDatesForNiches(ctx context.Context, niches []string) ([]Entry, error) {
	if len(niches) == 0 {
		return nil, ErrNoNicheSelected
	}

	log.Debugf("fetching dates for niches: %v", niches)
	rows, err := f.store.FindByNiches(ctx, niches)
	if err != nil {
		log.Errorf("failed to fetch dates for niches %v: %v", niches, err)
		f.notifier.Notify(ctx, notify.FetchFailed(niche.CacheKey(niches)))
		return nil, err
	}

	if len(rows) == 0 {
		log.Debugf("no dates found for niches: %v", niches)
		return []Entry{}, nil
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, EntryFromRow(row))
	}
	log.Debugf("fetched %d dates for niches: %v", len(entries), niches)
	return entries, nil
}

func (f *Fetcher) ListNiches(ctx context.Context) ([]string, error) {
	niches, err := f.store.ListNiches(ctx)
	if err != nil {
		log.Errorf("failed to list niches: %v", err)
		return nil, err
	}
	return niches, nil
}
