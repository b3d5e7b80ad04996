// Package idm assembles the data-access layer behind one facade.
//
// # Overview
//
// New wires the component graph: the sqlite-backed session store, the
// token store hydrated from it, the request pipeline, the single-flight
// refresh coordinator, the auth client, and the shared realtime socket.
// Everything the application needs goes through the returned Client:
//
//	client, _ := idm.New(ctx, cfg, log)
//	rows, err := client.From("enrollments").Eq("status", "active").Execute(ctx)
//	out, err := client.Rpc(ctx, "recompute_totals", params)
//	ch := client.Channel("room1").On(realtime.RowChanges, filter, cb).Subscribe()
//
// # See Also
//
//   - Pipeline & errors: internal/client/api
//   - Session & refresh: internal/client/auth
//   - Query DSL:         internal/client/query
//   - Notifications:     internal/client/realtime
package idm
