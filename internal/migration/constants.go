package migration

const (
	// Log messages for migration routines
	MsgRoutineStarted   = "Migration routine started"
	MsgRoutineFinished  = "Migration routine finished"
	MsgRoutineAborted   = "Migration routine aborted"
	MsgRoutineDisabled  = "Migration routine disabled"
	MsgRecordMigrated   = "Record migrated"
	MsgRecordDuplicate  = "Record already migrated, skipping"
	MsgRecordInvalid    = "Invalid record, skipping"
	MsgMalformedRow     = "Malformed row, skipping"
	MsgUserNotFound     = "Sale references an unknown user, skipping"
	MsgProductNotFound  = "Sale references an unknown product, skipping"
	MsgLookupFailed     = "Failed to look up record, skipping"
	MsgInsertFailed     = "Failed to insert record, skipping"
	MsgRunStarted       = "Migration run started"
	MsgRunFinished      = "Migration run finished"
	MsgRoutineSummary   = "Routine summary"
	MsgWriteLimitFailed = "Write limiter wait failed"

	// Metric names, prefixed with the service namespace
	MetricRecordsTotal    = "records_total"
	MetricRoutineDuration = "routine_duration_seconds"
	MetricLastRun         = "last_run_timestamp_seconds"

	statusCompleted = "completed"
	statusAborted   = "aborted"
)
