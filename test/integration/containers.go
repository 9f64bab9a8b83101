package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type Env struct {
	PG    *tcpostgres.PostgresContainer
	Redis *tcredis.RedisContainer
	Kafka *tckafka.KafkaContainer

	PGURL     string
	RedisAddr string
	Brokers   []string
}

// Setup starts postgres, redis and kafka containers for end-to-end
// fulfillment tests.
func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	env := &Env{}

	pgC, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bookstore"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}
	env.PG = pgC

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		env.Terminate(ctx)
		return nil, fmt.Errorf("postgres url: %w", err)
	}
	env.PGURL = pgURL

	redisC, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		env.Terminate(ctx)
		return nil, fmt.Errorf("start redis: %w", err)
	}
	env.Redis = redisC

	redisURL, err := redisC.ConnectionString(ctx)
	if err != nil {
		env.Terminate(ctx)
		return nil, fmt.Errorf("redis url: %w", err)
	}
	env.RedisAddr = strings.TrimPrefix(redisURL, "redis://")

	kafkaC, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("fulfillment-test"),
	)
	if err != nil {
		env.Terminate(ctx)
		return nil, fmt.Errorf("start kafka: %w", err)
	}
	env.Kafka = kafkaC

	brokers, err := kafkaC.Brokers(ctx)
	if err != nil {
		env.Terminate(ctx)
		return nil, fmt.Errorf("kafka brokers: %w", err)
	}
	env.Brokers = brokers

	return env, nil
}

func (e *Env) Terminate(ctx context.Context) {
	if e.Kafka != nil {
		_ = e.Kafka.Terminate(ctx)
	}
	if e.Redis != nil {
		_ = e.Redis.Terminate(ctx)
	}
	if e.PG != nil {
		_ = e.PG.Terminate(ctx)
	}
}
