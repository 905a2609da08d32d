// Package monitor exposes decoder activity as Prometheus metrics.
//
// Metrics implements decoder.Observer, so it is registered with the decoder
// like any other observer and served on /metrics by the server package.
// It uses its own registry rather than the global default one, which keeps
// tests independent of each other.
package monitor
