// Package infra contains technical adapters: stores, the MQTT ingest
// consumer, metrics exporters, identity resolution and error monitoring.
// These packages depend only on the contracts defined in the core
// packages.
package infra
