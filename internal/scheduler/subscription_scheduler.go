package scheduler

import (
	"time"

	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// SubscriptionExpirer is the part of the plan service the job needs.
type SubscriptionExpirer interface {
	ExpireSubscriptions(now time.Time) (int64, error)
}

// SubscriptionScheduler marks finished subscriptions as expired on a cron spec.
type SubscriptionScheduler struct {
	cron    *cron.Cron
	spec    string
	expirer SubscriptionExpirer
	now     func() time.Time
}

func NewSubscriptionScheduler(expirer SubscriptionExpirer, spec string, loc *time.Location) *SubscriptionScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &SubscriptionScheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		spec:    spec,
		expirer: expirer,
		now:     time.Now,
	}
}

// Start registers the job and starts the cron runner. An invalid spec is
// returned and nothing is started.
func (s *SubscriptionScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for subscription expiry", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Subscription scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce expires due subscriptions. Errors are logged; the next run retries.
func (s *SubscriptionScheduler) RunOnce() {
	expired, err := s.expirer.ExpireSubscriptions(s.now())
	if err != nil {
		logger.Error("Failed to expire subscriptions", err)
		return
	}
	logger.Info("Subscription expiry finished", map[string]interface{}{
		"expired": expired,
	})
}

// Stop waits for a running job to finish.
func (s *SubscriptionScheduler) Stop() {
	logger.Info("Stopping subscription scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Subscription scheduler stopped")
}
