// Package infra contains technical adapters such as record writers for
// MQTT, Kafka and Postgres, and metrics exporters. These packages should
// depend only on the interfaces defined in the core packages.
package infra
