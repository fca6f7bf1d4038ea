// Package vqueue is the HTTP client for the remote virtual-queue API.
//
// # Endpoints
//
//	POST {base}/queue/{queueId}/branch/{branchId}/enqueue   create a turn
//	GET  {base}/turn/code/{code}                            read a turn's status
//
// Both requests carry the x-api-token header and a fresh X-Request-ID. The
// transport is wrapped with otelhttp so each call becomes a client span when a
// tracer provider is installed.
//
// # Errors
//
// Enqueue failures wrap ErrEnqueueFailed. A response that decodes but lacks
// code, videoCallUrl or jsonDetails.turn additionally wraps ErrMalformedResponse,
// so callers can treat it as an enqueue failure while logging the detail.
// FetchStatus failures wrap ErrPollFailed; the monitor treats them as transient.
// Non-success statuses surface as *StatusError inside the chain.
//
// # Status Extraction
//
// The status endpoint has shipped two shapes. The top-level "status" field wins;
// otherwise jsonDetails.status is used. When neither is present TurnStatus.HasStatus
// is false and the caller picks a default label.
package vqueue
