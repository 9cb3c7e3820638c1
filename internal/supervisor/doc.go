// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package supervisor provides process supervision for Atelier using suture v4.

The tree organizes long-running services into layers for failure isolation:

	RootSupervisor ("atelier")
	├── DataSupervisor ("data-layer")
	│   └── HistoryGCService (BadgerDB history only)
	├── SyncSupervisor ("sync-layer")
	│   └── SyncService (if SYNC_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash in the sync layer restarts the scheduler without dropping HTTP
connections, and the API keeps serving the last committed catalog.

Supervisor events (service failures, restarts, backoff) are logged through
sutureslog on a slog.Logger; pass logging.NewSlogLogger() to route them into
zerolog.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddSyncService(services.NewSyncService(pipe, services.SyncSchedule{Interval: time.Hour}))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)
*/
package supervisor
