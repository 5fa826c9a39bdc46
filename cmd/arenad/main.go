package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gamenio/arenacore/internal/battle"
	"github.com/gamenio/arenacore/internal/config"
	"github.com/gamenio/arenacore/internal/data"
	"github.com/gamenio/arenacore/internal/jps"
	"github.com/gamenio/arenacore/internal/mapdata"
	"github.com/gamenio/arenacore/internal/protocol"
	"github.com/gamenio/arenacore/internal/scripting"
	"github.com/gamenio/arenacore/internal/spawn"
	"github.com/gamenio/arenacore/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(mapName string, mapID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             arenad  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      tick-driven battle arena core         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mmap:\033[0m %s \033[90m(id: %d)\033[0m\n\n", mapName, mapID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main harness logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/arena.toml"
	if p := os.Getenv("ARENAD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	dataDir := "data/yaml"
	if p := os.Getenv("ARENAD_DATA_DIR"); p != "" {
		dataDir = p
	}
	mapDir := "data/map"
	if p := os.Getenv("ARENAD_MAP_DIR"); p != "" {
		mapDir = p
	}

	printBanner("Frostbound Hollow", 1)

	// 3. Telemetry: a dedicated registry, never prometheus's global
	// default (matches the teacher's no-package-globals discipline).
	printSection("telemetry")
	reg := prometheus.NewRegistry()
	metrics := telemetry.New(reg)
	printOK("prometheus registry constructed")

	// 4. Template data tables
	printSection("template data")
	natures, err := data.LoadNatureTable(dataDir + "/nature_list.yaml")
	if err != nil {
		return fmt.Errorf("load nature table: %w", err)
	}
	printStat("nature templates", natures.Count())

	robotSpawns, err := data.LoadRobotSpawnTable(dataDir + "/robot_spawn_list.yaml")
	if err != nil {
		return fmt.Errorf("load robot spawn table: %w", err)
	}
	printStat("robot spawn infos", len(robotSpawns.SpawnInfos))

	// 5. Map
	printSection("map")
	mapTable, err := mapdata.Load(dataDir+"/map_list.yaml", mapDir, log)
	if err != nil {
		return fmt.Errorf("load map list: %w", err)
	}
	m := mapTable.Get(1)
	if m == nil {
		return fmt.Errorf("map 1 not found (tile file missing from %s?)", mapDir)
	}
	printOK(fmt.Sprintf("loaded %s (%dx%d, population cap %d)", m.Info.Name, m.Info.Width, m.Info.Height, m.Info.PopulationCap))

	// 6. Pathfinding
	pm := jps.NewPrecomputeMap(m, m.Info.Width, m.Info.Height)
	finder := jps.NewFinder(pm)
	printOK("JPS+ precompute table built")

	// 7. Bot scripting engine
	printSection("scripting")
	engine, err := scripting.NewEngine(cfg.Bot.ScriptDir, log)
	if err != nil {
		return fmt.Errorf("load bot scripts: %w", err)
	}
	defer engine.Close()
	printOK(fmt.Sprintf("lua scripts loaded from %s", cfg.Bot.ScriptDir))

	// 8. Battle instance — this harness always runs the training-
	// ground variant (no PREPARING phase, no pending-player gate),
	// since it spawns robots only.
	printSection("battle")
	seed := time.Now().UnixNano()
	if s := os.Getenv("ARENAD_SEED"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			seed = v
		}
	}
	rng := rand.New(rand.NewSource(seed))

	battleCfg := battle.Config{
		IsTraining:          true,
		PreparingDuration:   cfg.Battle.PreparingDuration,
		BattleDuration:      time.Duration(m.Info.BattleDuration) * time.Second,
		InitialSafeRadius:   int32(m.Info.Width),
		InitialSafeDistance: int32(m.Info.Width),
		AlertRadius:         cfg.Battle.SafeZoneAlertRadius,
		Seed:                seed,
	}
	battleInst := battle.New(m, battleCfg, metrics)
	battleInst.OnUpdate = func(u protocol.BattleUpdate) {
		log.Debug("battle update", zap.Int32("state", u.State), zap.Int32("alive_count", u.AliveCount))
	}
	battleInst.Start(time.Now())
	printOK(fmt.Sprintf("battle %s started (state=%d)", battleInst.ID, battleInst.State))

	// 9. Robot spawn filler + simulation
	filler := spawn.NewRobotFiller(robotSpawns, m, rng)
	sim := newArenaSim(cfg, log, m, finder, natures, filler, engine, battleInst, metrics, rng)

	for _, rs := range filler.FillIfNeeded(0, m.Info.PopulationCap) {
		sim.spawnRobot(rs)
	}
	printStat("robots spawned", len(sim.units))

	// 10. Metrics HTTP endpoint
	metricsAddr := ":9090"
	if a := os.Getenv("ARENAD_METRICS_ADDR"); a != "" {
		metricsAddr = a
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	// 11. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("tick rate %s", cfg.TickRate))
	printReady(fmt.Sprintf("metrics listening on %s/metrics", metricsAddr))
	fmt.Println()

	for {
		select {
		case now := <-ticker.C:
			sim.Tick(now, cfg.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			metricsServer.Close()
			log.Info("arenad stopped")
			return nil
		}
	}
}

// newLogger builds a zap logger from LoggingConfig, following the
// teacher's dev/prod zap.Config split (internal/config.LoggingConfig
// Format: "json" selects production defaults, anything else a
// colorized console encoder).
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
