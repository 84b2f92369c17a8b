package cache

import (
	"context"
	"time"
)

// Noop never stores anything. Every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, any) error { return nil }

func (Noop) SetWithTTL(context.Context, string, any, time.Duration) error { return nil }

func (Noop) SetWithExpiration(context.Context, string, any, Expiration) error { return nil }

func (Noop) Remove(context.Context, string) error { return nil }

func (Noop) RemoveByPattern(context.Context, string) error { return nil }

var _ Cache = Noop{}
