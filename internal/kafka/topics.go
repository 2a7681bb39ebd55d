package kafka

const (
	// TopicAssignmentEvents carries lifecycle events keyed by assignment ID,
	// so every event of one assignment lands on the same partition in order.
	TopicAssignmentEvents = "assignments.events"
	// TopicAssignmentEventsDLQ receives events the notifier gave up on.
	TopicAssignmentEventsDLQ = "assignments.events.dlq"
	// TopicDailyReports carries the scheduler's daily report snapshots.
	TopicDailyReports = "reports.daily"
)
