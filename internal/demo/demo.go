// Package demo provides the in-memory mock data layer: an embedded redis
// server holding JSON-marshalled aggregates behind the same store
// interfaces as the hosted Postgres layer, pre-seeded with fixture data so
// the dashboard is usable without any external service.
package demo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Start boots an embedded redis server and returns a client pointed at it.
// The caller owns both and closes them on shutdown.
func Start() (*miniredis.Miniredis, *redis.Client, error) {
	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start embedded redis: %w", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		return nil, nil, fmt.Errorf("ping embedded redis: %w", err)
	}
	return mr, client, nil
}

// kv stores one entity kind as JSON documents under a key prefix, with a
// set of ids for listing.
type kv struct {
	client *redis.Client
	prefix string // e.g. "demo:project:"
	index  string // e.g. "demo:projects"
}

func newKV(client *redis.Client, kind string) *kv {
	return &kv{
		client: client,
		prefix: "demo:" + kind + ":",
		index:  "demo:" + kind + "s",
	}
}

func (k *kv) key(id string) string { return k.prefix + id }

func (k *kv) put(ctx context.Context, id string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", k.prefix, err)
	}

	pipe := k.client.Pipeline()
	pipe.Set(ctx, k.key(id), doc, 0)
	pipe.SAdd(ctx, k.index, id)
	_, err = pipe.Exec(ctx)
	return err
}

func (k *kv) get(ctx context.Context, id string, out any) (bool, error) {
	data, err := k.client.Get(ctx, k.key(id)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", k.prefix, err)
	}
	return true, nil
}

func (k *kv) del(ctx context.Context, id string) (bool, error) {
	pipe := k.client.Pipeline()
	delCmd := pipe.Del(ctx, k.key(id))
	pipe.SRem(ctx, k.index, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return delCmd.Val() > 0, nil
}

// each iterates all stored documents of the kind, handing the raw JSON to
// decode.
func (k *kv) each(ctx context.Context, decode func(data []byte) error) error {
	ids, err := k.client.SMembers(ctx, k.index).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		data, err := k.client.Get(ctx, k.key(id)).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return err
		}
		if err := decode([]byte(data)); err != nil {
			return err
		}
	}
	return nil
}
