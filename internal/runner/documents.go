package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"eduparser/internal/scraper"

	"golang.org/x/sync/singleflight"
)

// documents shares fetched documents between the tasks of one run. several
// tasks read the same workbook, it is downloaded once. failures are not kept,
// every task retries them on its own.
type documents struct {
	fetcher Fetcher
	flight  singleflight.Group

	mu    sync.Mutex
	cache map[string]scraper.Document
}

func newDocuments(fetcher Fetcher) *documents {
	return &documents{
		fetcher: fetcher,
		cache:   map[string]scraper.Document{},
	}
}

func (d *documents) cached(url string) (scraper.Document, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.cache[url]
	return doc, ok
}

// get returns the document at url, joining a download another task already
// started. a download runs under the context of the task that started it, so
// when that task gives up the waiters start their own.
func (d *documents) get(ctx context.Context, url string, timeout time.Duration) (scraper.Document, error) {
	for {
		doc, err := d.join(ctx, url, timeout)
		var abandoned *abandonedFetch
		if errors.As(err, &abandoned) && ctx.Err() == nil {
			continue
		}
		return doc, err
	}
}

func (d *documents) join(ctx context.Context, url string, timeout time.Duration) (scraper.Document, error) {
	if doc, ok := d.cached(url); ok {
		return doc, nil
	}

	ch := d.flight.DoChan(url, func() (val any, err error) {
		// singleflight crashes the process on a panic in a DoChan callback.
		defer func() {
			if p := recover(); p != nil {
				err = &taskPanic{value: p, stack: debug.Stack()}
			}
		}()
		// a flight for url may have finished since the check above.
		if doc, ok := d.cached(url); ok {
			return doc, nil
		}
		fetched, err := d.fetcher.Fetch(ctx, url, timeout)
		if err != nil && ctx.Err() != nil {
			return scraper.Document{}, &abandonedFetch{err: err}
		}
		if err != nil {
			return scraper.Document{}, err
		}
		d.mu.Lock()
		d.cache[url] = fetched
		d.mu.Unlock()
		return fetched, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var abandoned *abandonedFetch
			if errors.As(res.Err, &abandoned) && ctx.Err() != nil {
				// the download was this task's own.
				return scraper.Document{}, abandoned.err
			}
			return scraper.Document{}, res.Err
		}
		return res.Val.(scraper.Document), nil
	case <-ctx.Done():
		return scraper.Document{}, ctx.Err()
	}
}

// abandonedFetch is a download that failed because the task that started it
// was cancelled or timed out.
type abandonedFetch struct {
	err error
}

func (a *abandonedFetch) Error() string {
	return fmt.Sprintf("download abandoned: %v", a.err)
}

func (a *abandonedFetch) Unwrap() error {
	return a.err
}

// taskPanic is a panic recovered away from the task's own goroutine.
type taskPanic struct {
	value any
	stack []byte
}

func (p *taskPanic) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}
