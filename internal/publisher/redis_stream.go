// Package publisher pushes harvested games onto Redis streams for
// downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/store"
	"github.com/redis/go-redis/v9"
)

// Stream names.
const (
	GameStream = "games.tournament.basketball_wiaa"
	RunStream  = "harvests.tournament.basketball_wiaa"
)

// Publisher publishes harvest events to Redis streams.
type Publisher struct {
	client *redis.Client
	log    *logging.Logger
}

// NewPublisher connects to Redis from a URL and pings it.
func NewPublisher(redisURL string, log *logging.Logger) (*Publisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewPublisherWithClient(client, log), nil
}

// NewPublisherWithClient wraps an existing Redis client.
func NewPublisherWithClient(client *redis.Client, log *logging.Logger) *Publisher {
	if log == nil {
		log = logging.Default()
	}
	return &Publisher{
		client: client,
		log:    log.Named("publisher"),
	}
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (p *Publisher) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// PublishGame publishes a stored game to the game stream.
func (p *Publisher) PublishGame(ctx context.Context, game *store.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: GameStream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
	if err != nil {
		return err
	}

	p.log.Debug("published game", "external_id", game.ExternalID, "stream", GameStream)
	return nil
}

// PublishRun publishes a finished harvest run summary to the run stream.
func (p *Publisher) PublishRun(ctx context.Context, run *store.HarvestRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: RunStream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
