//go:build !tinygo && !baremetal

package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisClient is the subset of *redis.Client the publisher uses.
type RedisClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

const (
	defaultRedisTries = 3
	// Publish runs inside the hub's Step, so a dead server may only stall
	// the turn loop this long per event.
	defaultRedisBudget = 250 * time.Millisecond
)

func defaultRedisBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	return b
}

// RedisPublisher mirrors the game into Redis: every event is appended to
// <prefix>:<session>:events and each player's latest position is kept in
// the <prefix>:<session>:players hash.
type RedisPublisher struct {
	client  RedisClient
	prefix  string
	newBack func() backoff.BackOff
	tries   uint
	budget  time.Duration
	log     *logrus.Entry
}

type RedisOption func(*RedisPublisher)

// WithBudget caps the total time one Publish may take, retries included.
func WithBudget(d time.Duration) RedisOption {
	return func(p *RedisPublisher) {
		if d > 0 {
			p.budget = d
		}
	}
}

// WithRetry sets the backoff policy and attempt limit for each write.
func WithRetry(newBack func() backoff.BackOff, tries uint) RedisOption {
	return func(p *RedisPublisher) {
		if newBack != nil {
			p.newBack = newBack
		}
		if tries > 0 {
			p.tries = tries
		}
	}
}

func NewRedisPublisher(client RedisClient, prefix string, opts ...RedisOption) *RedisPublisher {
	p := &RedisPublisher{
		client:  client,
		prefix:  prefix,
		newBack: defaultRedisBackOff,
		tries:   defaultRedisTries,
		budget:  defaultRedisBudget,
		log:     logrus.WithField("component", "redis"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return c, nil
}

func (p *RedisPublisher) key(session, suffix string) string {
	return p.prefix + ":" + session + ":" + suffix
}

// Publish writes ev, giving up once the publisher's budget is spent.
func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.budget)
	defer cancel()

	_, err = backoff.Retry(ctx, func() (int64, error) {
		n, err := p.client.RPush(ctx, p.key(ev.Session, "events"), data).Result()
		if err != nil {
			p.log.WithError(err).Debug("rpush failed, retrying")
		}
		return n, err
	}, backoff.WithBackOff(p.newBack()), backoff.WithMaxTries(p.tries),
		backoff.WithMaxElapsedTime(p.budget))
	if err != nil {
		return fmt.Errorf("redis publish %s: %w", ev.Type, err)
	}

	if ev.Type != EventRoll {
		return nil
	}
	_, err = backoff.Retry(ctx, func() (int64, error) {
		return p.client.HSet(ctx, p.key(ev.Session, "players"), ev.Player, ev.Position).Result()
	}, backoff.WithBackOff(p.newBack()), backoff.WithMaxTries(p.tries),
		backoff.WithMaxElapsedTime(p.budget))
	if err != nil {
		return fmt.Errorf("redis position %s: %w", ev.Player, err)
	}
	return nil
}
