// Package store persists published catalogues.
//
// [FileStore] is the primary sink: it writes the index document, one detail
// document per enriched slug and the run report under an output directory,
// replacing each file atomically so readers never see a partial document.
// A run holds an exclusive lock on the directory for its whole duration.
//
// Mirrors receive a copy of what was written locally. [S3Mirror] uploads the
// same JSON documents to an S3-compatible bucket and [MongoMirror] upserts
// entries into a MongoDB collection. [Publisher] fans a snapshot out to the
// configured mirrors and records each outcome; a failing mirror never fails
// the run.
package store
