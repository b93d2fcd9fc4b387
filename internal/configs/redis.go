package config

import (
	"log"

	"github.com/redis/rueidis"
)

// NewRedisClient connects to the remote store's redis instance. Client-side
// caching is disabled: the engine keeps its own in-memory copy, and every
// remote read must observe the latest full-collection write.
func NewRedisClient(addr string) rueidis.Client {
	client, err := rueidis.NewClient(
		rueidis.ClientOption{
			InitAddress:  []string{addr},
			DisableCache: true,
		},
	)
	if err != nil {
		log.Fatalf("failed to connect redis at %s: %v", addr, err)
	}

	return client
}
