package cron

import (
	"fmt"
	"time"

	"github.com/learnhub-ng/api/model"
)

// AggregateEngagementStatistics sums the last 24 hours of engagement buckets
// for operator visibility. Runs hourly.
func (m *CronManager) AggregateEngagementStatistics() {
	jobName := "aggregate_engagement"

	since := time.Now().UTC().Add(-24 * time.Hour).Truncate(24 * time.Hour)

	var totals struct {
		Views       int64
		Downloads   int64
		Completions int64
		Buckets     int64
	}
	err := m.db.Model(&model.ContentEngagement{}).
		Where("date >= ?", since).
		Select("COALESCE(SUM(views), 0) AS views, COALESCE(SUM(downloads), 0) AS downloads, COALESCE(SUM(completions), 0) AS completions, COUNT(*) AS buckets").
		Scan(&totals).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to aggregate engagement: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf(
		"%d buckets: %d views, %d downloads, %d completions",
		totals.Buckets, totals.Views, totals.Downloads, totals.Completions))
}

// ReportStalePendingActivities counts activities that have sat in pending for
// over 7 days. They are never retried automatically; this report is how
// operators notice clients that stopped syncing. Runs daily.
func (m *CronManager) ReportStalePendingActivities() {
	jobName := "report_stale_pending"

	cutoff := time.Now().AddDate(0, 0, -7)

	var stale int64
	err := m.db.Model(&model.OfflineActivity{}).
		Where("sync_status = ? AND created_at < ?", model.SyncStatusPending, cutoff).
		Count(&stale).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to count stale activities: %w", err))
		return
	}

	var failed int64
	err = m.db.Model(&model.OfflineActivity{}).
		Where("sync_status = ?", model.SyncStatusFailed).
		Count(&failed).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to count failed activities: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf(
		"%d activities pending for over 7 days, %d failed awaiting resubmission", stale, failed))
}

// CleanupOldCronLogs removes job log rows older than 30 days. Runs daily.
func (m *CronManager) CleanupOldCronLogs() {
	jobName := "cleanup_cron_logs"

	cutoff := time.Now().AddDate(0, 0, -30)

	result := m.db.Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to delete old logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deleted %d old cron job logs", result.RowsAffected))
}
