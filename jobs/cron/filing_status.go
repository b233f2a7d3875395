package cron

import (
	"github.com/jasonlvhit/gocron"
	"gorm.io/gorm"

	"github.com/haree-hq/haree/config"
	"github.com/haree-hq/haree/services/audit"
	"github.com/haree-hq/haree/services/filing"
)

// FilingStatusJob flips pending filings past their due date to overdue.
// The due date is already business-day adjusted when the filing is saved,
// so the sweep is a single guarded update per night.
type FilingStatusJob struct {
	Tracker *filing.Tracker
}

func NewFilingStatusJob(db *gorm.DB) *FilingStatusJob {
	auditSvc := audit.NewService(config.InfluxDB)

	return &FilingStatusJob{
		Tracker: filing.NewTracker(db, auditSvc),
	}
}

func (j *FilingStatusJob) Process() {
	s := gocron.NewScheduler()
	s.Every(1).Day().At("00:30:00").Do(j.refreshOverdue)
	<-s.Start()
}

func (j *FilingStatusJob) refreshOverdue() {
	updated, err := j.Tracker.RefreshOverdue()
	if err != nil {
		config.Logger.Errorf("cron: refresh overdue filings failed: %v", err)
		return
	}

	if updated > 0 {
		config.Logger.Infof("cron: marked %d filings overdue", updated)
	}
}
