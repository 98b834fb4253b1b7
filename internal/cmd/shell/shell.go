// Package shell wires the session and notification core into a runnable
// process: configuration, telemetry, the session store, the queue,
// dispatch, the session bridge, identity refresh, and a log-backed toast
// surface.
package shell

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/text/language"

	"github.com/louisbranch/repetigone/internal/identity"
	"github.com/louisbranch/repetigone/internal/notification/bridge"
	"github.com/louisbranch/repetigone/internal/notification/dispatch"
	notifdomain "github.com/louisbranch/repetigone/internal/notification/domain"
	"github.com/louisbranch/repetigone/internal/notification/queue"
	"github.com/louisbranch/repetigone/internal/notification/render"
	platformcmd "github.com/louisbranch/repetigone/internal/platform/cmd"
	"github.com/louisbranch/repetigone/internal/platform/id"
	sessiondomain "github.com/louisbranch/repetigone/internal/session/domain"
	sessionstore "github.com/louisbranch/repetigone/internal/session/store"
	"github.com/louisbranch/repetigone/internal/storage"
	"github.com/louisbranch/repetigone/internal/storage/sqlite"
	"github.com/louisbranch/repetigone/internal/telemetry"
)

// Config holds the shell's runtime settings.
type Config struct {
	// DBPath locates the telemetry SQLite database. Empty disables
	// persistence; the emitter becomes a no-op.
	DBPath string `env:"REPETIGONE_SHELL_DB_PATH"`
	// IdentityURL is the identity service base URL. Empty disables the
	// refresh loop; sessions can still transition via direct events.
	IdentityURL string `env:"REPETIGONE_IDENTITY_URL"`
	// Locale selects the notification copy language (BCP 47 tag).
	Locale string `env:"REPETIGONE_LOCALE" envDefault:"en"`
	// SweepInterval is how often expired notifications are dropped and
	// the identity manager re-checks the session deadline.
	SweepInterval time.Duration `env:"REPETIGONE_SWEEP_INTERVAL" envDefault:"1s"`
	// RefreshLead is how far ahead of session expiry renewal starts.
	RefreshLead time.Duration `env:"REPETIGONE_REFRESH_LEAD" envDefault:"1m"`
	// ScopeCapacity caps retained notifications per scope.
	ScopeCapacity int `env:"REPETIGONE_SCOPE_CAPACITY" envDefault:"100"`
	// TelemetryDump, when positive, prints that many recent telemetry
	// events and exits instead of running the shell.
	TelemetryDump int `env:"REPETIGONE_TELEMETRY_DUMP"`
}

// ParseConfig loads environment defaults and applies flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "telemetry database path (empty disables persistence)")
	fs.StringVar(&cfg.IdentityURL, "identity-url", cfg.IdentityURL, "identity service base URL (empty disables refresh)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "notification copy locale")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "expiry sweep and refresh tick interval")
	fs.DurationVar(&cfg.RefreshLead, "refresh-lead", cfg.RefreshLead, "session renewal lead time")
	fs.IntVar(&cfg.ScopeCapacity, "scope-capacity", cfg.ScopeCapacity, "retained notifications per scope")
	fs.IntVar(&cfg.TelemetryDump, "dump-telemetry", cfg.TelemetryDump, "print the N most recent telemetry events and exit")

	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the shell and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceShell, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Second
	}

	var telemetryStore storage.TelemetryStore
	if cfg.DBPath != "" {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open telemetry store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close telemetry store: %v", err)
			}
		}()
		telemetryStore = store
	}

	if cfg.TelemetryDump > 0 {
		return dumpTelemetry(ctx, telemetryStore, cfg.TelemetryDump)
	}

	emitter := telemetry.NewEmitter(telemetryStore)

	sessions := sessionstore.New(time.Now)
	notifications := queue.New(cfg.ScopeCapacity)
	dispatcher := dispatch.New(notifications, sessions, time.Now, id.NewID)
	defer dispatcher.Close()

	sessionBridge := bridge.New(sessions, dispatcher, func(err error) {
		log.Printf("bridge publish: %v", err)
		emit(ctx, emitter, storage.TelemetryEvent{
			Name:       "bridge.publish_failed",
			Severity:   string(telemetry.SeverityError),
			DetailJSON: detailJSON(map[string]string{"error": err.Error()}),
		})
	})
	defer sessionBridge.Close()

	unsubscribeTransitions := sessions.Subscribe(func(previous, next sessiondomain.Session) {
		emit(ctx, emitter, storage.TelemetryEvent{
			Name:     "session.transition",
			Severity: string(telemetry.SeverityInfo),
			Subject:  next.SubjectID,
			DetailJSON: detailJSON(map[string]string{
				"from": previous.Status.String(),
				"to":   next.Status.String(),
			}),
		})
	})
	defer unsubscribeTransitions()

	unsubscribeToasts := subscribeToastLog(ctx, dispatcher, emitter, cfg.Locale)
	defer unsubscribeToasts()

	manager := newIdentityManager(cfg, sessions)

	log.Printf("shell started (db=%q identity=%q locale=%q)", cfg.DBPath, cfg.IdentityURL, cfg.Locale)
	emit(ctx, emitter, storage.TelemetryEvent{
		Name:     "shell.start",
		Severity: string(telemetry.SeverityInfo),
	})

	done := make(chan struct{})
	if manager != nil {
		go func() {
			defer close(done)
			manager.Run(ctx, cfg.SweepInterval, func(err error) {
				log.Printf("identity refresh: %v", err)
				emit(ctx, emitter, storage.TelemetryEvent{
					Name:       "identity.refresh_failed",
					Severity:   string(telemetry.SeverityError),
					DetailJSON: detailJSON(map[string]string{"error": err.Error()}),
				})
			})
		}()
	} else {
		close(done)
	}

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			<-done
			emit(context.WithoutCancel(ctx), emitter, storage.TelemetryEvent{
				Name:     "shell.stop",
				Severity: string(telemetry.SeverityInfo),
			})
			log.Print("shell stopped")
			return nil
		case now := <-ticker.C:
			dispatcher.Sweep(now)
		}
	}
}

// subscribeToastLog is the in-process stand-in for a visual toast
// surface: it watches the global scope and logs rendered copy for
// records it has not shown yet.
func subscribeToastLog(ctx context.Context, dispatcher *dispatch.Dispatcher, emitter *telemetry.Emitter, locale string) func() {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	localizer := render.NewLocalizer(tag)

	shown := make(map[string]bool)
	return dispatcher.Subscribe(notifdomain.ScopeGlobal, func(records []notifdomain.Record) {
		for _, record := range records {
			if shown[record.ID] {
				continue
			}
			shown[record.ID] = true
			output := render.Render(localizer, record)
			log.Printf("toast [%s] %s: %s", record.Severity, output.Title, output.Body)
			emit(ctx, emitter, storage.TelemetryEvent{
				Name:     "notification.shown",
				Severity: string(telemetry.SeverityInfo),
				Subject:  string(record.Scope),
				DetailJSON: detailJSON(map[string]string{
					"topic": record.Topic,
					"id":    record.ID,
				}),
			})
		}
	})
}

func dumpTelemetry(ctx context.Context, store storage.TelemetryStore, limit int) error {
	if store == nil {
		return fmt.Errorf("telemetry dump requires a database path")
	}
	events, err := store.ListTelemetryEvents(ctx, limit)
	if err != nil {
		return fmt.Errorf("list telemetry events: %w", err)
	}
	for _, event := range events {
		log.Printf("%s %-5s %s subject=%q %s",
			event.Timestamp.Format(time.RFC3339), event.Severity, event.Name, event.Subject, event.DetailJSON)
	}
	return nil
}

func newIdentityManager(cfg Config, sessions *sessionstore.Store) *identity.Manager {
	if cfg.IdentityURL == "" {
		return nil
	}
	client, err := identity.NewClient(cfg.IdentityURL)
	if err != nil {
		log.Printf("identity client disabled: %v", err)
		return nil
	}
	return identity.NewManager(client, sessions, time.Now, cfg.RefreshLead)
}

func emit(ctx context.Context, emitter *telemetry.Emitter, event storage.TelemetryEvent) {
	if err := emitter.Emit(ctx, event); err != nil {
		log.Printf("emit telemetry %s: %v", event.Name, err)
	}
}

func detailJSON(fields map[string]string) string {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
