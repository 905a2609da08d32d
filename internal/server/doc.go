// Package server exposes a running bridge over HTTP.
//
// Routes:
//
//	/ws       websocket feed, one JSON decoder.Event per decode cycle
//	/healthz  {"status":"ok", ...} with the source id and build version
//	/stats    decoder counters (decoder.Snapshot)
//	/metrics  Prometheus exposition
//
// The Hub is a decoder.Observer: the decoder calls Observe after every
// cycle and the hub queues the event for each websocket client. A client
// that falls sendBuffer events behind is disconnected rather than slowing
// the decoder down.
//
// # Usage Example
//
//	hub := server.NewHub(dec.Stats().Snapshot)
//	dec.AddObserver(hub)
//
//	srv := server.New(&server.Config{Listen: ":9433", Advertise: true, SourceID: id},
//	    hub, metrics.Handler(), dec.Stats().Snapshot)
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Shutdown(context.Background())
//
// # Discovery
//
// With Advertise set, Start registers a "_ookbridge._tcp" mDNS service so
// that "ookbridge scan" and "ookbridge watch" can find the bridge without a
// URL. Registration failures are logged and do not stop the server.
//
// # Client
//
// Subscribe dials a feed URL and delivers decoded events on a channel; the
// terminal monitor is built on it.
package server
