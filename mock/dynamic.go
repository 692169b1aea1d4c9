package mock

import (
	"context"

	"github.com/fwojciec/prodcrawl"
)

var _ prodcrawl.DynamicLoader = (*DynamicLoader)(nil)

// DynamicLoader is a mock implementation of prodcrawl.DynamicLoader.
type DynamicLoader struct {
	ExhaustFn       func(ctx context.Context, pageURL string, trigger prodcrawl.TriggerType, target prodcrawl.LinkInfo) ([]prodcrawl.LinkInfo, error)
	ExhaustScrollFn func(ctx context.Context, pageURL string) ([]prodcrawl.LinkInfo, error)
	CloseFn         func() error
}

func (d *DynamicLoader) Exhaust(ctx context.Context, pageURL string, trigger prodcrawl.TriggerType, target prodcrawl.LinkInfo) ([]prodcrawl.LinkInfo, error) {
	if d.ExhaustFn == nil {
		return nil, nil
	}
	return d.ExhaustFn(ctx, pageURL, trigger, target)
}

func (d *DynamicLoader) ExhaustScroll(ctx context.Context, pageURL string) ([]prodcrawl.LinkInfo, error) {
	if d.ExhaustScrollFn == nil {
		return nil, nil
	}
	return d.ExhaustScrollFn(ctx, pageURL)
}

func (d *DynamicLoader) Close() error {
	if d.CloseFn == nil {
		return nil
	}
	return d.CloseFn()
}
