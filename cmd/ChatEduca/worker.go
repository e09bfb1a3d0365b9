package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"ChatEduca/internal/initial"
	"ChatEduca/internal/modules/chat/infrastructure/persistence"
	"ChatEduca/internal/modules/chat/infrastructure/queue"
	"ChatEduca/pkg/zlog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTurnStatsCommand() *cobra.Command {
	opts := &Options{}
	var fromOldest bool
	cmd := &cobra.Command{
		Use:   "turn-stats",
		Short: "consume chat turn events into session metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, db, cleanup, err := opts.setup()
			if err != nil {
				return err
			}
			defer cleanup()

			consumer, err := initial.OpenConsumer(conf.KafkaConfig, fromOldest)
			if err != nil {
				return err
			}
			defer func() {
				if err := consumer.Close(); err != nil {
					zlog.Warn("close kafka consumer", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			zlog.Info("turn stats worker started",
				zap.String("topic", conf.TurnTopic),
				zap.String("group", conf.TurnGroup))
			worker := queue.NewTurnStatsWorker(consumer, persistence.NewSessionRepository(db))
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			zlog.Info("turn stats worker stopped")
			return nil
		},
	}
	opts.AddFlags(cmd.Flags())
	cmd.Flags().BoolVar(&fromOldest, "from-oldest", false, "start a new consumer group at the oldest retained event")
	return cmd
}
