package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	_ "github.com/hoizi89/advanced-switches/docs"
	"github.com/hoizi89/advanced-switches/internal/engine"
	"github.com/hoizi89/advanced-switches/internal/handlers"
	"github.com/hoizi89/advanced-switches/internal/logger"
	"github.com/hoizi89/advanced-switches/internal/repository"
	"github.com/hoizi89/advanced-switches/internal/server"
	"github.com/hoizi89/advanced-switches/internal/service"
)

// @title        Advanced Switches API
// @version      1.0
// @description  Device state and session tracking for power-metered smart outlets.

// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// build the engine from config
	cfg, err := trackerConfig()
	if err != nil {
		log.Fatalw("invalid tracker config", "err", err)
	}
	eng, err := engine.New(cfg)
	if err != nil {
		log.Fatalw("invalid tracker config", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, eng, &logSink{log: log})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// restore persisted statistics before any reading or tick
	if err := services.Tracker.Restore(ctx); err != nil {
		log.Fatalw("failed to restore statistics", "err", err)
	}

	// start the timer loop (via composed service)
	go services.Runner.Run(ctx, viper.GetDuration("runner.tick"))

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// logSink records emitted device commands. The physical actuator (the outlet
// relay) lives outside this process; an integration replaces this sink with a
// real transport.
type logSink struct {
	log *logger.Logger
}

func (s *logSink) TurnOff(ctx context.Context) error {
	s.log.Infow("device command", "command", "turn_off")
	return nil
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	setConfigDefaults()
	return viper.ReadInConfig()
}

func setConfigDefaults() {
	viper.SetDefault("port", "8080")
	viper.SetDefault("db.path", "tracker.db")
	viper.SetDefault("runner.tick", time.Second)

	viper.SetDefault("tracker.mode", engine.ModeSimple)
	viper.SetDefault("tracker.timezone", "Local")
	viper.SetDefault("tracker.active_threshold_w", engine.DefaultActiveThresholdW)
	viper.SetDefault("tracker.standby_threshold_w", engine.DefaultStandbyThresholdW)
	viper.SetDefault("tracker.on_delay", engine.DefaultOnDelay)
	viper.SetDefault("tracker.off_delay", engine.DefaultOffDelay)
	viper.SetDefault("tracker.active_standby_delay", engine.DefaultActiveStandbyDelay)
	viper.SetDefault("tracker.session_end_grace", engine.DefaultSessionEndGrace)
	// min_session has no static default; unset falls back per mode below.
	viper.SetDefault("tracker.power_smoothing", time.Duration(0))
	viper.SetDefault("tracker.session_end_on_standby", false)

	viper.SetDefault("tracker.schedule.enabled", false)
	viper.SetDefault("tracker.schedule.start", "06:00")
	viper.SetDefault("tracker.schedule.end", "22:00")
	viper.SetDefault("tracker.schedule.days", []int{0, 1, 2, 3, 4, 5, 6})

	viper.SetDefault("tracker.auto_off.enabled", false)
	viper.SetDefault("tracker.auto_off.after", time.Duration(engine.DefaultAutoOffMinutes)*time.Minute)
}

// trackerConfig assembles the engine configuration from viper keys.
func trackerConfig() (engine.Config, error) {
	days := make([]time.Weekday, 0, 7)
	for _, d := range viper.GetIntSlice("tracker.schedule.days") {
		days = append(days, time.Weekday(d%7))
	}

	mode := viper.GetString("tracker.mode")

	minSession := engine.DefaultMinSessionFor(mode)
	if viper.IsSet("tracker.min_session") {
		minSession = viper.GetDuration("tracker.min_session")
	}

	loc, err := time.LoadLocation(viper.GetString("tracker.timezone"))
	if err != nil {
		return engine.Config{}, fmt.Errorf("tracker.timezone: %w", err)
	}

	return engine.Config{
		Mode:                mode,
		Location:            loc,
		ActiveThresholdW:    viper.GetFloat64("tracker.active_threshold_w"),
		StandbyThresholdW:   viper.GetFloat64("tracker.standby_threshold_w"),
		OnDelay:             viper.GetDuration("tracker.on_delay"),
		OffDelay:            viper.GetDuration("tracker.off_delay"),
		ActiveStandbyDelay:  viper.GetDuration("tracker.active_standby_delay"),
		SessionEndGrace:     viper.GetDuration("tracker.session_end_grace"),
		MinSession:          minSession,
		PowerSmoothing:      viper.GetDuration("tracker.power_smoothing"),
		SessionEndOnStandby: viper.GetBool("tracker.session_end_on_standby"),
		Schedule: engine.ScheduleConfig{
			Enabled: viper.GetBool("tracker.schedule.enabled"),
			Start:   viper.GetString("tracker.schedule.start"),
			End:     viper.GetString("tracker.schedule.end"),
			Days:    days,
		},
		AutoOff: engine.AutoOffConfig{
			Enabled: viper.GetBool("tracker.auto_off.enabled"),
			After:   viper.GetDuration("tracker.auto_off.after"),
		},
	}, nil
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "tracker.db")
		dbPath = "tracker.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
