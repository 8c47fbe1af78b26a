package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_login_attempts_total",
		Help: "Number of login attempts grouped by status.",
	}, []string{"status"})

	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_registrations_total",
		Help: "Number of registration attempts grouped by status.",
	}, []string{"status"})

	postsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_posts_created_total",
		Help: "Number of post create operations grouped by status.",
	}, []string{"status"})

	commentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_comments_created_total",
		Help: "Number of comments written.",
	})

	likesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_likes_toggled_total",
		Help: "Number of like toggles grouped by target kind.",
	}, []string{"target"})

	searches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_searches_total",
		Help: "Number of full-text search requests.",
	})

	passwordResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_password_resets_total",
		Help: "Number of password reset operations grouped by stage and status.",
	}, []string{"stage", "status"})

	rateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_rate_limit_hits_total",
		Help: "Rate limiter activations grouped by limiter name.",
	}, []string{"limiter"})
)

// IncLogin increments the login counter.
func IncLogin(status string) {
	loginAttempts.WithLabelValues(status).Inc()
}

// IncRegister increments the registration counter.
func IncRegister(status string) {
	registrations.WithLabelValues(status).Inc()
}

// IncPostCreated increments the post creation counter.
func IncPostCreated(status string) {
	postsCreated.WithLabelValues(status).Inc()
}

// IncComment increments the comment counter.
func IncComment() {
	commentsCreated.Inc()
}

// IncLikeToggle increments the like toggle counter for "post" or "comment".
func IncLikeToggle(target string) {
	likesToggled.WithLabelValues(target).Inc()
}

// IncSearch increments the search counter.
func IncSearch() {
	searches.Inc()
}

// IncPasswordReset increments the reset counter, stage is "request" or "confirm".
func IncPasswordReset(stage, status string) {
	passwordResets.WithLabelValues(stage, status).Inc()
}

// IncRateLimit increments the rate-limit hit counter.
func IncRateLimit(name string) {
	rateLimitHits.WithLabelValues(name).Inc()
}
