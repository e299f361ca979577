package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/config"
	"github.com/StoreStation/phantomcraft/pkg/dispatch"
	"github.com/StoreStation/phantomcraft/pkg/phantom"
	"github.com/StoreStation/phantomcraft/pkg/plugin"
	"github.com/StoreStation/phantomcraft/pkg/roam"
	"github.com/StoreStation/phantomcraft/pkg/server"
	"github.com/StoreStation/phantomcraft/pkg/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "config/server.toml", "Path to the server configuration")
	address := flag.String("address", "", "Override the listen address")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *address != "" {
		cfg.Server.Address = *address
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	gameMode, ok := server.ParseGameMode(cfg.Server.DefaultGameMode)
	if !ok {
		return fmt.Errorf("invalid default game mode %q", cfg.Server.DefaultGameMode)
	}
	srv := server.New(server.Config{
		Address:           cfg.Server.Address,
		MaxPlayers:        cfg.Server.MaxPlayers,
		MOTD:              cfg.Server.MOTD,
		DefaultGameMode:   gameMode,
		Build:             cfg.Server.Build,
		KeepAliveInterval: cfg.Server.KeepAliveInterval,
	}, log)

	v, err := version.Detect(srv)
	if err != nil {
		return fmt.Errorf("detect version: %w", err)
	}
	if v.Protocol() != server.ProtocolVersion {
		log.Warn("declared build does not match the protocol clients speak",
			zap.Stringer("build", v), zap.Int32("build_protocol", v.Protocol()))
	}

	resolver, err := bridge.NewResolver(v, log)
	if err != nil {
		return fmt.Errorf("build resolver: %w", err)
	}
	if err := resolver.Preload(); err != nil {
		return fmt.Errorf("preload symbols for %s: %w", v, err)
	}
	helper := dispatch.New(resolver, log)
	srv.SetHelper(helper)

	if cfg.Roam.Enabled {
		factory := phantom.NewFactory(helper, srv, srv.Scheduler(), log,
			phantom.WithRemovalDelay(cfg.Roam.RemovalDelayTicks))
		srv.Install(plugin.Wrap(roam.New(cfg.Roam, factory, srv, srv, log), log))
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	log.Info("phantomcraft started",
		zap.String("minecraft", server.VersionName),
		zap.Stringer("build", v),
		zap.String("address", cfg.Server.Address),
		zap.Int("max_players", cfg.Server.MaxPlayers))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.Stringer("signal", sig))
	case <-srv.StopChan():
		log.Info("shutting down (internal)")
	}
	srv.Stop()
	return nil
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
