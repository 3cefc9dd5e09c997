package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/TheAlpha16/cent-go"
	"github.com/rs/zerolog"
	"github.com/valkey-io/valkey-go"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Publish through Redis queue first and fall back to HTTP API. Queue
	// only accepts publish, broadcast, unsubscribe and disconnect, so other
	// methods go straight over HTTP.
	chain := cent.NewChain([]cent.Transport{
		cent.NewValkeyQueueTransport("localhost:6379", valkey.ClientOption{}, cent.WithQueueLogger(logger)),
		cent.NewHTTPTransport(cent.WithHTTPTimeout(5 * time.Second)),
	}, cent.WithLogger(logger))

	client := cent.New("http://localhost:8000/api", "my-api-key", chain, cent.WithLogger(logger))
	defer func() { _ = client.Close() }()

	ctx := context.Background()

	resp, err := client.Publish(ctx, "news", map[string]any{"text": "Hello from cent-go"})
	if err != nil {
		log.Fatalf("Failed to publish: %v", err)
	}
	fmt.Printf("Published, reply body: %s\n", resp.Body())

	if _, err := client.Presence(ctx, "news"); err != nil {
		if errors.Is(err, cent.ErrNotAvailable) {
			fmt.Println("Presence is not enabled for channel namespace")
		} else {
			log.Printf("Failed to get presence: %v", err)
		}
	}

	// Several commands in one round trip.
	publish, _ := client.Request("publish", map[string]any{"channel": "news", "data": "one"})
	history, _ := client.Request("history", map[string]any{"channel": "news", "limit": 10})
	batch, err := client.CallBatch(ctx, publish, history)
	if err != nil {
		log.Fatalf("Failed to send batch: %v", err)
	}
	for key, r := range batch.All() {
		if r.IsError() {
			fmt.Printf("%d: error %s\n", key, r.ErrorMessage())
			continue
		}
		fmt.Printf("%d: %s\n", key, r.Body())
	}

	token, err := client.GenerateConnectionToken("42", time.Now().Add(time.Hour), nil)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	fmt.Println("Connection token:", token)
}
