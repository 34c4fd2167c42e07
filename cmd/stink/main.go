package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Mwvndva/stink/internal/api"
	"github.com/Mwvndva/stink/internal/config"
	"github.com/Mwvndva/stink/internal/flow"
	"github.com/Mwvndva/stink/internal/genai"
	"github.com/Mwvndva/stink/internal/lockfile"
	"github.com/Mwvndva/stink/internal/messaging"
	"github.com/Mwvndva/stink/internal/scheduler"
	"github.com/Mwvndva/stink/internal/session"
	"github.com/Mwvndva/stink/internal/store"
	"github.com/Mwvndva/stink/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Stink state data
	DefaultStateDir = "/var/lib/stink"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "stink.db"
)

// Flags holds command line flag values
type Flags struct {
	qrOutput    *string
	numeric     *bool
	dbDSN       *string
	waDSN       *string
	personaFile *string
	apiAddr     *string
	checkInCron *string
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initializeLogger(cfg.Debug)

	flags := parseCommandLineFlags(cfg)

	slog.Info("Bootstrapping Stink with configured modules")
	if err := run(cfg, flags); err != nil {
		slog.Error("Stink failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Stink exited successfully")
}

// initializeLogger sets up structured logging
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(cfg *config.Config) Flags {
	dbDSN := cfg.DatabaseURL
	if dbDSN == "" {
		dbDSN = filepath.Join(DefaultStateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", dbDSN)
	}
	waDSN := cfg.WhatsAppDBDSN
	if waDSN == "" {
		waDSN = cfg.DatabaseURL
	}

	flags := Flags{
		qrOutput:    flag.String("qr-output", "", "path to write login QR code"),
		numeric:     flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		dbDSN:       flag.String("db-dsn", dbDSN, "database DSN for the conversation store (overrides $DATABASE_URL)"),
		waDSN:       flag.String("wa-db-dsn", waDSN, "database DSN for the WhatsApp session store (overrides $WHATSAPP_DB_DSN)"),
		personaFile: flag.String("persona-file", cfg.PersonaFile, "path to a persona prompt file (overrides $PERSONA_FILE)"),
		apiAddr:     flag.String("api-addr", cfg.APIAddr(), "liveness endpoint address (overrides $PORT)"),
		checkInCron: flag.String("checkin-cron", cfg.CheckInCron, "cron schedule for daily check-ins (overrides $CHECKIN_CRON)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"dbDSN_set", *flags.dbDSN != "",
		"waDSN_set", *flags.waDSN != "",
		"personaFile", *flags.personaFile,
		"apiAddr", *flags.apiAddr,
		"checkInCron", *flags.checkInCron)

	return flags
}

// run wires and supervises all modules until a termination signal arrives.
func run(cfg *config.Config, flags Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lock, err := lockfile.AcquireLock(stateDir(flags))
	if err != nil {
		return err
	}
	defer lock.Release()

	st, err := store.New(store.WithDSN(*flags.dbDSN))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			slog.Error("main.run: failed to close store", "error", cerr)
		}
	}()

	waOpts := buildWhatsAppOptions(flags)
	waClient, err := whatsapp.NewClient(waOpts...)
	if err != nil {
		return err
	}
	defer waClient.Disconnect()

	supervisor := whatsapp.NewSupervisor(waClient)
	go supervisor.Run(ctx)

	responder, err := genai.NewClient(
		genai.WithAPIKey(cfg.TogetherAPIKey),
		genai.WithBaseURL(cfg.TogetherBaseURL),
		genai.WithModel(cfg.Model),
	)
	if err != nil {
		return err
	}

	persona, err := flow.LoadPersona(*flags.personaFile)
	if err != nil {
		return err
	}
	assembler := flow.NewAssembler(persona)
	shaper := flow.NewShaper(cfg.EmojiEnabled)

	service := messaging.NewWhatsAppService(waClient)
	if err := service.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if serr := service.Stop(); serr != nil {
			slog.Error("main.run: failed to stop messaging service", "error", serr)
		}
	}()

	pacer := messaging.NewPacer(service)
	sessions := session.NewManager()
	pipeline := flow.NewPipeline(st, assembler, responder, shaper, pacer, sessions)

	go func() {
		for {
			select {
			case msg := <-service.Messages():
				go pipeline.HandleIncoming(ctx, msg)
			case <-ctx.Done():
				return
			}
		}
	}()

	checkIn := flow.NewCheckInJob(st, assembler, responder, pacer)
	sched := scheduler.NewScheduler()
	if err := sched.AddJob(*flags.checkInCron, func() {
		checkIn.Run(context.Background())
	}); err != nil {
		return err
	}
	defer sched.Stop()

	apiServer := api.NewServer(*flags.apiAddr)
	apiServer.Start()
	defer func() {
		if serr := apiServer.Stop(); serr != nil {
			slog.Error("main.run: failed to stop liveness endpoint", "error", serr)
		}
	}()

	slog.Info("Stink is running", "api_addr", *flags.apiAddr, "checkin_cron", *flags.checkInCron)
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping modules")
	return nil
}

// stateDir returns the directory guarded by the instance lock. File-based
// store DSNs anchor it; Postgres deployments fall back to the default.
func stateDir(flags Flags) string {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		return filepath.Dir(*flags.dbDSN)
	}
	return DefaultStateDir
}

// buildWhatsAppOptions constructs WhatsApp configuration options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if *flags.waDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.waDSN))
	}
	return waOpts
}
