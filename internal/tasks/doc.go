// Package tasks orchestrates the long-running operations behind the CLI:
// bulk playlist exports and local cache synchronization.
//
// [ExportEngine.BulkExport] fans playlist fetches through a rate limiter into
// a bounded worker pool that writes files (JSON, CSV, Markdown, or text via
// the formatter package) and finishes with a manifest summarizing the run.
//
// [ExportEngine.SyncCache] refreshes the SQLite cache: playlists are
// upserted, tracks replaced wholesale. Failures are collected per playlist
// so one bad playlist never aborts the sync.
//
// Both operations report progress through a channel of [ProgressUpdate]
// values; sends never block, so a slow or absent consumer cannot stall the
// work.
package tasks
