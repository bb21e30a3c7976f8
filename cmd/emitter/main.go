// Command emitter publishes a sample domain event to the events exchange so the
// notification adapter can be exercised without the producing services.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"notifyprefs/internal/config"
	"notifyprefs/internal/events"
	"notifyprefs/internal/logger"
	"notifyprefs/internal/queue"
)

var samples = map[events.Kind]any{
	events.KindEventRSVP: events.RSVPPayload{
		EventID:    "evt-42",
		EventTitle: "Go community meetup",
		Status:     events.RSVPGoing,
		Reminder:   true,
	},
	events.KindReportResolved: events.ReportResolvedPayload{
		ReportID:   "rep-7",
		Resolution: "content removed",
	},
	events.KindBadgeUnlocked: events.BadgeUnlockedPayload{
		BadgeName: "Early Bird",
		Rarity:    "rare",
	},
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	kind := flag.String("kind", string(events.KindBadgeUnlocked), "event kind to publish")
	user := flag.String("user", "", "target user id (empty uses the service default)")
	payload := flag.String("payload", "", "raw JSON payload (defaults to a sample for the kind)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: true})

	env, err := buildEnvelope(events.Kind(*kind), *user, *payload)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid event")
	}

	manager, err := queue.NewManager(queue.Config{
		URL:      cfg.RabbitMQ.URL,
		Exchange: cfg.RabbitMQ.Exchange,
	}, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create RabbitMQ manager")
	}
	defer manager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := manager.Publish(ctx, env); err != nil {
		log.Error().Err(err).Msg("failed to publish event")
		os.Exit(1)
	}
}

func buildEnvelope(kind events.Kind, user, payload string) (events.Envelope, error) {
	env := events.Envelope{
		Kind:       kind,
		UserID:     user,
		OccurredAt: time.Now(),
	}

	if payload != "" {
		if !json.Valid([]byte(payload)) {
			return events.Envelope{}, fmt.Errorf("payload is not valid JSON")
		}
		env.Payload = json.RawMessage(payload)
		return env, nil
	}

	sample, ok := samples[kind]
	if !ok {
		known := make([]string, 0, len(samples))
		for _, k := range events.Kinds() {
			known = append(known, string(k))
		}
		return events.Envelope{}, fmt.Errorf("no sample for kind %q, known kinds: %s", kind, strings.Join(known, ", "))
	}

	raw, err := json.Marshal(sample)
	if err != nil {
		return events.Envelope{}, fmt.Errorf("failed to marshal sample: %w", err)
	}
	env.Payload = raw
	return env, nil
}
