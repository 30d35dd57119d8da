// Package simplepublish provides a small content-publishing library: an
// authenticated admin uploads a PDF (with optional cover image) plus metadata,
// the file lands in a pluggable blob store, the metadata row lands in a
// pluggable relational store, and a public read API lists posts and streams
// files with HTTP byte-range support for PDFs.
//
// It exposes a single Service interface that orchestrates post
// create/update/delete, slug normalization, storage key derivation, and
// range-aware blob delivery. Implementations of repositories (memory, SQLite,
// Postgres) and blob stores (memory, filesystem, S3) are provided under
// subpackages.
//
// Consistency Model
//
// Blob writes and metadata writes are not transactional with each other. The
// service orders operations so a metadata row never references a blob that has
// not been durably written: blobs are written first, the row second, and stale
// blobs are removed last, best-effort. The price is that some failure paths
// (e.g. a slug conflict after the PDF upload) leave orphaned blobs behind;
// that is accepted, documented behavior, not a bug.
package simplepublish
