package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newMiniCache(t *testing.T) *ContractCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewContractCache(NewFromClient(rdb))
}

func TestContractCache_VersionFloor(t *testing.T) {
	tests := []struct {
		name   string
		steps  func(ctx context.Context, c *ContractCache, id uuid.UUID) error
		want   string
		isMiss bool
	}{
		{
			name: "older set does not overwrite newer",
			steps: func(ctx context.Context, c *ContractCache, id uuid.UUID) error {
				if err := c.Set(ctx, id, 2, []byte("v2")); err != nil {
					return err
				}
				return c.Set(ctx, id, 1, []byte("v1"))
			},
			want: "v2",
		},
		{
			name: "invalidate then stale set stays empty",
			steps: func(ctx context.Context, c *ContractCache, id uuid.UUID) error {
				if err := c.Set(ctx, id, 1, []byte("v1")); err != nil {
					return err
				}
				if err := c.Invalidate(ctx, id, 2); err != nil {
					return err
				}
				return c.Set(ctx, id, 1, []byte("v1"))
			},
			isMiss: true,
		},
		{
			name: "invalidate then current set is cached",
			steps: func(ctx context.Context, c *ContractCache, id uuid.UUID) error {
				if err := c.Invalidate(ctx, id, 2); err != nil {
					return err
				}
				return c.Set(ctx, id, 2, []byte("v2"))
			},
			want: "v2",
		},
		{
			name: "invalidate never lowers the floor",
			steps: func(ctx context.Context, c *ContractCache, id uuid.UUID) error {
				if err := c.Invalidate(ctx, id, 5); err != nil {
					return err
				}
				if err := c.Invalidate(ctx, id, 3); err != nil {
					return err
				}
				return c.Set(ctx, id, 4, []byte("v4"))
			},
			isMiss: true,
		},
		{
			name: "delete keeps the floor",
			steps: func(ctx context.Context, c *ContractCache, id uuid.UUID) error {
				if err := c.Set(ctx, id, 3, []byte("v3")); err != nil {
					return err
				}
				if err := c.Delete(ctx, id); err != nil {
					return err
				}
				return c.Set(ctx, id, 2, []byte("v2"))
			},
			isMiss: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c := newMiniCache(t)
			id := uuid.New()

			if err := tt.steps(ctx, c, id); err != nil {
				t.Fatalf("steps: %v", err)
			}
			got, err := c.Get(ctx, id)
			if tt.isMiss {
				if !errors.Is(err, ErrCacheMiss) {
					t.Fatalf("expected ErrCacheMiss, got %q, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
