// Package monitor polls the status of an issued turn on a fixed interval and
// turns each response into Presenter calls.
//
// At most one turn is monitored per Monitor and at most one status request
// is outstanding at a time. Ticks that fire while a request is pending are
// skipped. Results that arrive after Stop, or after Start has moved on to a
// different turn, are dropped.
package monitor
