// Package state holds the displayed state of the monitored turn.
//
// The monitor is the single writer: it calls Begin when a turn is issued,
// Update after every poll and MarkStopped or Clear when monitoring ends. The
// presentation layer and the registration flow read copies through Snapshot.
//
// A failed poll keeps the previous Turn and only bumps ConsecutiveFailures and
// LastError, so a flaky network never blanks the visitor's screen.
package state
