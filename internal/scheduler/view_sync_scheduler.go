package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultViewSyncSpec flushes buffered product views every five minutes.
const DefaultViewSyncSpec = "*/5 * * * *"

const syncTimeout = time.Minute

// ViewSyncer moves buffered view counts into the database.
type ViewSyncer interface {
	SyncViewCounts(ctx context.Context) (int, error)
}

// ViewSyncScheduler periodically drains product view counters.
type ViewSyncScheduler struct {
	cron   *cron.Cron
	spec   string
	syncer ViewSyncer
}

func NewViewSyncScheduler(syncer ViewSyncer, spec string) *ViewSyncScheduler {
	if spec == "" {
		spec = DefaultViewSyncSpec
	}
	return &ViewSyncScheduler{
		cron:   cron.New(),
		spec:   spec,
		syncer: syncer,
	}
}

func (s *ViewSyncScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		logger.Error("Failed to add cron job for view sync", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("View sync scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

func (s *ViewSyncScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	synced, err := s.syncer.SyncViewCounts(ctx)
	if err != nil {
		logger.Error("Failed to sync product view counts", err)
		return
	}
	if synced > 0 {
		logger.Debug("Scheduled view sync finished", map[string]interface{}{
			"products": synced,
		})
	}
}

// Stop waits for a running sync to finish.
func (s *ViewSyncScheduler) Stop() {
	logger.Info("Stopping view sync scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("View sync scheduler stopped")
}
