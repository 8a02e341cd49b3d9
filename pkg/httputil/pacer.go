package httputil

import (
	"context"
	"time"
)

// Pacer enforces fixed inter-request and inter-page delays.
// A zero Pacer never waits.
type Pacer struct {
	Item time.Duration
	Page time.Duration

	sleep func(context.Context, time.Duration) error
}

// NewPacer returns a pacer with the given item and page delays.
func NewPacer(item, page time.Duration) *Pacer {
	return &Pacer{Item: item, Page: page}
}

// WithItem returns a copy of p using a different per-item delay.
func (p *Pacer) WithItem(item time.Duration) *Pacer {
	if p == nil {
		return &Pacer{Item: item}
	}
	q := *p
	q.Item = item
	return &q
}

// AfterItem waits the per-item delay. A nil Pacer never waits.
func (p *Pacer) AfterItem(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	return p.wait(ctx, p.Item)
}

// AfterPage waits the per-page delay. A nil Pacer never waits.
func (p *Pacer) AfterPage(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	return p.wait(ctx, p.Page)
}

func (p *Pacer) wait(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}
	return Sleep(ctx, d)
}
