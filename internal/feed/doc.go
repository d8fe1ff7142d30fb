// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package feed implements the galaxy feed pipeline: a transport-agnostic
// Source (ZeroMQ by default, NATS behind the nats build tag), a pure
// Decoder turning raw compressed messages into ordered persistence
// statements, and the Ingester that batches statements into atomic
// commits and runs the journal retention sweep.
package feed
