package processor

import (
	"context"
	"time"

	"storefront/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CatalogWarmer загружает список товаров в кэш
type CatalogWarmer interface {
	Warm(ctx context.Context) (int, error)
}

// SessionPruner выгружает из памяти неактивные сессии
type SessionPruner interface {
	PruneIdle(before time.Time) int
}

// CronScheduler фоновые задачи сервиса: прогрев кэша каталога и очистка
// неактивных сессий
type CronScheduler struct {
	cron    *cron.Cron
	warmer  CatalogWarmer
	pruners []SessionPruner
	idleTTL time.Duration
	now     func() time.Time
}

func NewCronScheduler(warmer CatalogWarmer, idleTTL time.Duration, pruners ...SessionPruner) *CronScheduler {
	c := cron.New(cron.WithLogger(cronLogger{}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{})))

	return &CronScheduler{
		cron:    c,
		warmer:  warmer,
		pruners: pruners,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Start регистрирует задачи и выполняет первичный прогрев каталога.
// Пустое расписание отключает соответствующую задачу.
func (s *CronScheduler) Start(ctx context.Context, warmSchedule, pruneSchedule string) error {
	logger.Info().
		Str("warm_schedule", warmSchedule).
		Str("prune_schedule", pruneSchedule).
		Msg("Starting cron scheduler")

	if warmSchedule != "" {
		if _, err := s.cron.AddFunc(warmSchedule, func() { s.warm(ctx) }); err != nil {
			return err
		}
	}

	if pruneSchedule != "" && s.idleTTL > 0 {
		if _, err := s.cron.AddFunc(pruneSchedule, func() { s.prune() }); err != nil {
			return err
		}
	}

	s.cron.Start()
	logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Cron scheduler started")

	if warmSchedule != "" {
		logger.Info().Msg("Performing initial catalog warmup...")
		s.warm(ctx)
	}

	return nil
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

func (s *CronScheduler) warm(ctx context.Context) {
	n, err := s.warmer.Warm(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Catalog warmup failed")
		return
	}
	logger.Info().Int("products", n).Msg("Catalog cache warmed")
}

func (s *CronScheduler) prune() int {
	before := s.now().Add(-s.idleTTL)
	total := 0
	for _, p := range s.pruners {
		total += p.PruneIdle(before)
	}
	if total > 0 {
		logger.Info().Int("sessions", total).Msg("Pruned idle sessions")
	}
	return total
}

// cronLogger направляет журнал cron в zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
