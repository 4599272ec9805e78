package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "archivemail_mails_total",
		Help: "Notification mails by kind and outcome (sent, failed, suppressed)",
	}, []string{"kind", "status"})

	ImagesStrippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "archivemail_images_stripped_total",
		Help: "Embedded images replaced by their URL, by content category",
	}, []string{"category"})

	SpamUsersOmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archivemail_spam_users_omitted_total",
		Help: "Spam report entries skipped because the user no longer exists",
	})

	LoginSuccessTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archivemail_admin_login_success_total",
		Help: "The total number of successful admin logins",
	})

	LoginFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archivemail_admin_login_failed_total",
		Help: "The total number of failed admin logins",
	})

	RateLimitHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "archivemail_rate_limit_hits_total",
		Help: "The total number of rate limit hits",
	}, []string{"type"})

	AuditLogsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "archivemail_audit_logs_total",
		Help: "The total number of audit logs by action",
	}, []string{"action"})
)
