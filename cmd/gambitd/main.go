package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gambitd/server/internal/auth"
	"github.com/gambitd/server/internal/config"
	"github.com/gambitd/server/internal/game"
	"github.com/gambitd/server/internal/handler"
	"github.com/gambitd/server/internal/match"
	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
	"github.com/gambitd/server/internal/persist"
	"github.com/gambitd/server/internal/presence"
	"github.com/gambitd/server/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             gambitd  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        online chess game server           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("GAMBITD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Connect to MongoDB and ensure indexes
	printSection("database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("MongoDB connected, indexes ensured")
	fmt.Println()

	// 4. Create repositories and domain services
	userRepo := persist.NewUserRepo(db)
	gameRepo := persist.NewGameRepo(db)

	passwords := auth.NewPasswords(cfg.Auth.BcryptCost)
	tokens := auth.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)

	sessions := gonet.NewSessionStore()

	// tasks carries closures back onto the coordinator goroutine: completed
	// bcrypt checks, repository reads, AI search results.
	tasks := make(chan func(), 256)
	post := func(fn func()) {
		tasks <- fn
	}

	controller := game.NewController(userRepo, gameRepo, sessions, game.NewLocalEngine(), cfg.AI.Workers, post, log)
	matchmaker := match.NewMatchmaker(cfg.Match.RatingWindow, cfg.Match.ChallengeTTL, log)
	online := presence.NewService(sessions, log)
	controller.SetPresence(online)
	controller.SetQueue(matchmaker)

	// 5. Create packet handler registry and register handlers
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Users:      userRepo,
		Games:      gameRepo,
		Sessions:   sessions,
		Match:      matchmaker,
		Presence:   online,
		Controller: controller,
		Passwords:  passwords,
		Tokens:     tokens,
		Config:     cfg,
		Log:        log,
		Post:       post,
	}
	handler.RegisterAll(pktReg, deps)

	// 6. Create network server
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		cfg.Network.WriteTimeout,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 7. Create coordinator systems
	inputSys := system.NewInputSystem(netServer, pktReg, deps, cfg.Network.MaxPacketsPerTick, log)
	sweepSys := system.NewSweepSystem(deps, cfg.Network.IdleTimeout, log)

	// 8. Start coordinator loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printSection("server ready")
	printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("coordinator loop started (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			inputSys.Update()
			sweepSys.Update(time.Now())
			inputSys.FlushAll()
		case fn := <-tasks:
			fn()
			inputSys.FlushAll()
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			netServer.Shutdown()
			sessions.ForEach(func(sess *gonet.Session) {
				sess.Close()
			})
			log.Info("server stopped",
				zap.Int("sessions", sessions.Count()),
				zap.Int("activeGames", controller.ActiveCount()))
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
