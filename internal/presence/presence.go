// Package presence keeps a Redis projection of who is in which clock status.
// Postgres stays the source of truth; the sets only serve the status board.
package presence

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/timeclock/internal/domain"
)

// Board maps each status to the sorted usernames currently in it.
type Board map[domain.Status][]string

// Store is the presence projection used by the status service.
type Store interface {
	Set(ctx context.Context, username string, status domain.Status) error
	Remove(ctx context.Context, username string) error
	Replace(ctx context.Context, board Board) error
	Board(ctx context.Context) (Board, error)
}

// RedisStore keeps one Redis set per status.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a store writing keys under prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "timeclock"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(status domain.Status) string {
	return s.prefix + ":presence:" + string(status)
}

// Set moves username into the set for status.
func (s *RedisStore) Set(ctx context.Context, username string, status domain.Status) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, st := range domain.Statuses {
			if st != status {
				pipe.SRem(ctx, s.key(st), username)
			}
		}
		pipe.SAdd(ctx, s.key(status), username)
		return nil
	})
	return err
}

// Remove drops username from every set.
func (s *RedisStore) Remove(ctx context.Context, username string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, st := range domain.Statuses {
			pipe.SRem(ctx, s.key(st), username)
		}
		return nil
	})
	return err
}

// Replace overwrites every set with board.
func (s *RedisStore) Replace(ctx context.Context, board Board) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, st := range domain.Statuses {
			pipe.Del(ctx, s.key(st))
			if names := board[st]; len(names) > 0 {
				members := make([]any, len(names))
				for i, n := range names {
					members[i] = n
				}
				pipe.SAdd(ctx, s.key(st), members...)
			}
		}
		return nil
	})
	return err
}

// Board reads every set.
func (s *RedisStore) Board(ctx context.Context) (Board, error) {
	cmds := make(map[domain.Status]*redis.StringSliceCmd, len(domain.Statuses))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, st := range domain.Statuses {
			cmds[st] = pipe.SMembers(ctx, s.key(st))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	board := make(Board, len(cmds))
	for st, cmd := range cmds {
		names := cmd.Val()
		sort.Strings(names)
		board[st] = names
	}
	return board, nil
}
