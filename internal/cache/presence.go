package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix    = "nodecore:node:"
	heartbeatTTL = 30 * time.Second
)

// Presence advertises this node as alive in Redis and counts its peers.
// It is strictly best-effort: the relational store stays the system of
// record, and a nil *Presence is a valid, fully disabled instance whose
// methods all no-op.
type Presence struct {
	client *redis.Client
}

// New connects to Redis at addr and verifies the connection with a ping.
// An empty addr returns a disabled (nil) Presence and no error.
func New(ctx context.Context, addr, password string, db int) (*Presence, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	return &Presence{client: client}, nil
}

// Heartbeat refreshes this node's liveness key. Keys expire on their own
// when a node stops heartbeating.
func (p *Presence) Heartbeat(ctx context.Context, uuid string) error {
	if p == nil {
		return nil
	}
	return p.client.Set(ctx, keyPrefix+uuid, time.Now().UTC().Format(time.RFC3339), heartbeatTTL).Err()
}

// Count returns the number of nodes with a live heartbeat key.
func (p *Presence) Count(ctx context.Context) (int, error) {
	if p == nil {
		return 0, nil
	}
	var count int
	iter := p.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// Forget drops this node's liveness key, used on graceful shutdown.
func (p *Presence) Forget(ctx context.Context, uuid string) error {
	if p == nil {
		return nil
	}
	return p.client.Del(ctx, keyPrefix+uuid).Err()
}

func (p *Presence) Close() error {
	if p == nil {
		return nil
	}
	return p.client.Close()
}
