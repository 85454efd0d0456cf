package redis_client

import (
	"context"
	"strconv"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

// Connect sets up Client from the environment. Without JOURNEYGRAPH_REDIS_ADDRESS
// and with required false, Redis is skipped and Client stays nil.
func Connect(ctx context.Context, required bool) error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["JOURNEYGRAPH_REDIS_ADDRESS"] != "" {
		address = env["JOURNEYGRAPH_REDIS_ADDRESS"]
	} else if !required {
		log.Info().Msg("Skipping Redis setup")
		return nil
	}

	if env["JOURNEYGRAPH_REDIS_PASSWORD"] != "" {
		password = env["JOURNEYGRAPH_REDIS_PASSWORD"]
	}

	if env["JOURNEYGRAPH_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["JOURNEYGRAPH_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	retry := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	err := backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, retry)
	if err != nil {
		client.Close()
		return err
	}

	Client = client
	log.Info().Str("address", address).Msg("Connected to Redis")

	return nil
}
