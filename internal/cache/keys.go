package cache

import "fmt"

// SessionLogKey holds the latest log of one session. owner scopes the session
// ID to the API key (or the scheduler) that created it.
func SessionLogKey(owner, sessionID string) string {
	return fmt.Sprintf("session:%s:%s:log", owner, sessionID)
}

// RateLimitKey counts the requests of one API key in the current window.
func RateLimitKey(keyID string) string {
	return fmt.Sprintf("ratelimit:%s", keyID)
}

// ScheduledBriefingKey holds the most recent scheduled briefing.
func ScheduledBriefingKey() string {
	return "briefing:scheduled:latest"
}

// ScheduledLockKey guards against overlapping scheduled runs across replicas.
func ScheduledLockKey() string {
	return "briefing:scheduled:lock"
}
