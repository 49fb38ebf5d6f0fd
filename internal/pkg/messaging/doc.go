// Package messaging publishes domain events to a broker without binding the
// caller to one.
//
// Kafka, NATS, NSQ and Google Pub/Sub are supported. Use NewFromDriver to pick
// one from configuration and depend on Publisher in business code.
package messaging
