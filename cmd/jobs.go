package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-reservations/app/service"
	"github.com/vibast-solutions/ms-go-reservations/config"
)

var (
	workerMode bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire stale payment attempts and release stale property holds",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"sweep",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.SweepInterval },
			func(s *service.ReservationService, ctx context.Context) error {
				return s.RunSweepBatch(ctx)
			},
		)
	},
}

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Run expiration-related commands",
}

var expireAttemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "Mark pending payment attempts past their deadline as expired",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"expire_attempts",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.SweepInterval },
			func(s *service.ReservationService, ctx context.Context) error {
				return s.RunExpireAttemptsBatch(ctx)
			},
		)
	},
}

var expireHoldsCmd = &cobra.Command{
	Use:   "holds",
	Short: "Release property holds past their deadline",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"expire_holds",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.SweepInterval },
			func(s *service.ReservationService, ctx context.Context) error {
				return s.RunExpireHoldsBatch(ctx)
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(expireCmd)
	expireCmd.AddCommand(expireAttemptsCmd)
	expireCmd.AddCommand(expireHoldsCmd)

	rootCmd.PersistentFlags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *service.ReservationService, ctx context.Context) error,
) {
	cfg, reservationService, cleanup := mustCreateReservationService()
	defer cleanup()

	if workerMode {
		runWorker(name, intervalResolver(cfg), reservationService, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(reservationService, ctx) })
}

func runWorker(
	name string,
	interval time.Duration,
	reservationService *service.ReservationService,
	fn func(s *service.ReservationService, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(reservationService, ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(reservationService, ctx) })
		}
	}
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
