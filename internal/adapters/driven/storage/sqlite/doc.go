// Package sqlite provides the embedded ReviewStore implementation.
//
// A single database file holds three tables: products (upserted,
// last-write-wins), reviews (insert-or-ignore, immutable) and
// sentiment_analysis (append-only). The database is opened in WAL mode
// so a monitoring reader can query while a pipeline run writes; nothing
// here provides multi-writer isolation — concurrent pipeline instances
// must be serialized by the deployment.
//
// Schema changes ship as embedded SQL migrations applied on open.
package sqlite
