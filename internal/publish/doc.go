// Package publish turns decoded readings into (topic, payload) messages and
// hands them to one or more transports.
//
// # Topics and payloads
//
// Rain gauge readings go to "<rain base>/data/<metric>" and F007TP readings
// to "<f007tp base><channel>/data/<metric>". With the default bases:
//
//	exp/NX6331/data/temperature  {"value":22.2,"id":2571,"source":"linux_a1b2c3"}
//	exp/F007TP-1/data/temperature {"value":25.0,"source":"linux_a1b2c3"}
//
// The value is a JSON number rendered with the reading's precision. Only
// rain gauge payloads carry the transmitter id; the F007TP channel is part
// of the topic.
//
// # Transports
//
//   - MQTTPublisher: MQTT broker via paho, reconnecting on publish
//   - RedisPublisher: Redis PUBLISH on a channel named after the topic
//   - LogPublisher: structured log lines, for dry runs
//   - Multi: fan-out to several of the above
//
// Publishing is best effort. The Dispatcher logs failures and carries on;
// a broker outage never stops the decoder.
package publish
