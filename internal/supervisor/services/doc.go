// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

/*
Package services provides suture.Service wrappers for Gatekeeper components.

Each wrapper translates a component's own lifecycle into suture's
Serve(ctx) error and implements fmt.Stringer so supervisor events name it.

HTTPServerService:
  - Runs ListenAndServe until the context is canceled
  - Drains in-flight requests with Shutdown and a configurable timeout

StoreGCService:
  - Runs BadgerDB value log GC for the user store on an interval
  - Logs failures and keeps running

The interfaces (HTTPServer, GarbageCollector) keep this package free of
imports from the packages it supervises.
*/
package services
