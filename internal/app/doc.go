// Package app is the composition root for queuecall.
//
// # Overview
//
// This package wires configuration, logging, tracing, the virtual-queue
// client, the optional journal, the turn monitor and the registration flow,
// then hands control to one of the two presentation surfaces.
//
// # Architecture
//
//  1. Load config.toml (plus .env and environment overrides) and validate it
//  2. Build the zap logger (JSON file, plus console on the inline surface in debug)
//  3. Install the OpenTelemetry tracer provider when an OTLP endpoint is set
//  4. Create the vqueue client and, when configured, open the Postgres journal
//  5. Create the monitor and flow around the surface's presenter
//  6. Run the surface and block until the visitor quits or ctx is cancelled
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Pick the surface from config (or --surface)
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read config and overrides
//	       ├─────> logging.New()        File (+ console) logger
//	       ├─────> telemetry.Setup()    Tracer provider
//	       ├─────> vqueue.NewClient()   HTTP client (otelhttp transport)
//	       ├─────> journal.Open()       Optional Postgres journal
//	       ├─────> monitor.New()        Turn status polling
//	       ├─────> registration.NewFlow()
//	       └─────> ui.Run() / session   Desktop or inline surface (blocks)
//
// # Entry Points
//
//   - Run: blank form on the configured surface
//   - Register: inline surface with fields from flags, prompting for the rest
//   - Watch: monitor an existing turn code without enqueueing
//   - Resume: Watch the last turn remembered in prefs.toml
//   - Status: one-shot status fetch plus journal history
//
// # Error Handling
//
// Startup errors (config, logging, client) are returned to main. After
// startup nothing is fatal: poll failures are logged and retried on the next
// tick, journal failures are logged and ignored.
package app
