package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/collab-relay/modules/api"
	"github.com/example/collab-relay/modules/presence"
	"github.com/example/collab-relay/modules/relay"
	"github.com/example/collab-relay/modules/stats"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Collaboration Relay - Fiber WebSocket + EventBus ===")

	cfg := api.LoadConfig()

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Create modules
	presenceModule := presence.NewModule(logger)
	relayModule := relay.NewModule(presenceModule.Registry(), logger)
	statsModule := stats.NewModule(logger)
	apiModule := api.NewModule(cfg, logger)

	// The engine drives live sockets, so it is handed over directly
	// instead of through a ServiceContainer.
	apiModule.SetEngine(relayModule.Engine())

	// Register modules with the framework.
	// - presence: Room Registry (ServiceProviderModule)
	// - relay: routing engine (EventEmitterModule)
	// - stats: relay counters (EventConsumerModule + ServiceProviderModule)
	// - api: Fiber HTTP/WebSocket server, depends on presence and stats
	app.Register(presenceModule)
	app.Register(relayModule)
	app.Register(statsModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg api.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", cfg.Port)
	log.Println("  Client events: join-room, leave-room, chat-message, editor-delta, canvas-snapshot, send-file")
	log.Println("  Server events: connected, user-joined, user-left, room-members, receive-file")
	log.Println("  Frame format:  {\"event\": <name>, \"data\": <payload>}")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", cfg.Port)
	log.Println("  GET    /health                    - Health check")
	log.Println("  GET    /api/v1/rooms              - List live rooms")
	log.Println("  GET    /api/v1/rooms/:id/members  - Room member list")
	log.Println("  GET    /api/v1/stats              - Relay counters")
	log.Println("")
	log.Printf("Allowed origins: %v", cfg.AllowedOrigins)
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
