package services

import (
	"context"
	"time"

	"credit-app/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// CronService runs periodic maintenance jobs
type CronService struct {
	cron        *cron.Cron
	revokedRepo repositories.RevokedSessionRepository
	schedule    string
}

// NewCronService creates a new cron service. schedule uses robfig/cron syntax, e.g. "@hourly".
func NewCronService(revokedRepo repositories.RevokedSessionRepository, schedule string) *CronService {
	return &CronService{
		cron:        cron.New(),
		revokedRepo: revokedRepo,
		schedule:    schedule,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.PurgeRevokedSessions); err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Str("schedule", s.schedule).Msg("cron service started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("cron service stopped")
}

// PurgeRevokedSessions removes revocations whose token has expired anyway
func (s *CronService) PurgeRevokedSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.revokedRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("purge revoked sessions failed")
		return
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Msg("purged expired session revocations")
	}
}
