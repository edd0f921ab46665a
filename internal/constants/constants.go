// Package constants provides a centralized location for the thresholds and
// fixed values used throughout issuebot.
package constants

import "time"

// Inactivity tier thresholds, in whole days since the last human activity.
const (
	// WarnDays is the age at which an issue is first labelled inactive.
	WarnDays = 182

	// PendingCloseDays is the age at which the second warning is posted.
	PendingCloseDays = 335

	// CloseDays is the age at which an issue is closed.
	CloseDays = 365
)

// TimestampLayout is the layout of every timestamp returned by the GraphQL API.
const TimestampLayout = "2006-01-02T15:04:05Z"

// GitHub API constants
const (
	// DefaultGraphQLEndpoint is used when api_endpoint is not configured.
	DefaultGraphQLEndpoint = "https://api.github.com/graphql"

	// MaxBatchSize is the largest page the issues connection accepts.
	MaxBatchSize = 100

	// DefaultBatchSize is the number of issues fetched per run.
	DefaultBatchSize = 100

	// RequestTimeout bounds a single GraphQL round trip.
	RequestTimeout = 30 * time.Second
)

// TUI constants
const (
	// TUIEventBuffer is the capacity of the progress event channel.
	TUIEventBuffer = 100

	// TruncationSuffixWidth is the width of the "..." suffix when truncating strings.
	TruncationSuffixWidth = 3
)

// History constants
const (
	// MaxHistoryRecords is the number of run snapshots kept on disk.
	MaxHistoryRecords = 1000

	// DefaultHistoryShown is the number of snapshots the history command prints.
	DefaultHistoryShown = 10
)
