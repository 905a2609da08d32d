package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/redis/go-redis/v9"
)

// fakeToken is an already-completed mqtt.Token.
type fakeToken struct {
	err     error
	pending bool
}

func (t fakeToken) Wait() bool                     { return !t.pending }
func (t fakeToken) WaitTimeout(time.Duration) bool { return !t.pending }
func (t fakeToken) Error() error                   { return t.err }

func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.pending {
		close(ch)
	}
	return ch
}

// fakeMQTTClient records publishes. Methods the publisher does not use are
// left to the embedded nil interface.
type fakeMQTTClient struct {
	mqtt.Client

	connected   bool
	connectErr  error
	connects    int
	publishTok  fakeToken
	published   []Message
	lastQoS     byte
	lastRetain  bool
	disconnects int
}

func (c *fakeMQTTClient) IsConnected() bool { return c.connected }

func (c *fakeMQTTClient) Connect() mqtt.Token {
	c.connects++
	if c.connectErr != nil {
		return fakeToken{err: c.connectErr}
	}
	c.connected = true
	return fakeToken{}
}

func (c *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.published = append(c.published, Message{Topic: topic, Payload: payload.(string)})
	c.lastQoS = qos
	c.lastRetain = retained
	return c.publishTok
}

func (c *fakeMQTTClient) Disconnect(uint) {
	c.disconnects++
	c.connected = false
}

func TestMQTTPublisher_ReconnectsOnPublish(t *testing.T) {
	client := &fakeMQTTClient{}
	p := newMQTTPublisher(MQTTConfig{Broker: "tcp://broker:1883", QoS: 1, Retain: true}, client)

	if err := p.Publish("exp/NX6331/data/rain", `{"value":12}`); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if client.connects != 1 {
		t.Errorf("connects = %d, want 1", client.connects)
	}
	if client.lastQoS != 1 || !client.lastRetain {
		t.Errorf("qos = %d retain = %v", client.lastQoS, client.lastRetain)
	}

	// Still connected: no second connect.
	if err := p.Publish("exp/NX6331/data/rain", `{"value":13}`); err != nil {
		t.Fatal(err)
	}
	if client.connects != 1 {
		t.Errorf("connects = %d after second publish, want 1", client.connects)
	}

	// Connection dropped: the next publish reconnects.
	client.connected = false
	if err := p.Publish("exp/NX6331/data/rain", `{"value":14}`); err != nil {
		t.Fatal(err)
	}
	if client.connects != 2 {
		t.Errorf("connects = %d after reconnect, want 2", client.connects)
	}
	if len(client.published) != 3 {
		t.Errorf("published %d messages, want 3", len(client.published))
	}

	p.Close()
	if client.disconnects != 1 {
		t.Errorf("disconnects = %d, want 1", client.disconnects)
	}
}

func TestMQTTPublisher_Errors(t *testing.T) {
	t.Run("connect failure", func(t *testing.T) {
		refused := errors.New("connection refused")
		client := &fakeMQTTClient{connectErr: refused}
		p := newMQTTPublisher(MQTTConfig{Broker: "tcp://broker:1883"}, client)

		err := p.Publish("t", "p")
		if !errors.Is(err, refused) {
			t.Fatalf("Publish() error = %v, want %v", err, refused)
		}
		if len(client.published) != 0 {
			t.Error("published without a connection")
		}
	})

	t.Run("publish timeout", func(t *testing.T) {
		client := &fakeMQTTClient{connected: true, publishTok: fakeToken{pending: true}}
		p := newMQTTPublisher(MQTTConfig{Timeout: time.Millisecond}, client)

		if err := p.Publish("t", "p"); !errors.Is(err, ErrPublishTimeout) {
			t.Fatalf("Publish() error = %v, want ErrPublishTimeout", err)
		}
	})
}

// fakeRedis records PUBLISH calls.
type fakeRedis struct {
	channels []string
	messages []interface{}
	err      error
	closed   bool
}

func (r *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	if r.err != nil {
		return redis.NewIntResult(0, r.err)
	}
	r.channels = append(r.channels, channel)
	r.messages = append(r.messages, message)
	return redis.NewIntResult(1, nil)
}

func (r *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", r.err)
}

func (r *fakeRedis) Close() error {
	r.closed = true
	return nil
}

func TestRedisPublisher(t *testing.T) {
	fake := &fakeRedis{}
	p := newRedisPublisher(RedisConfig{Addr: "localhost:6379"}, fake)

	if err := p.Publish("exp/F007TP-1/data/temperature", `{"value":25.0}`); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(fake.channels) != 1 || fake.channels[0] != "exp/F007TP-1/data/temperature" {
		t.Errorf("channels = %v", fake.channels)
	}
	if fake.messages[0] != `{"value":25.0}` {
		t.Errorf("message = %v", fake.messages[0])
	}

	fake.err = errors.New("READONLY")
	if err := p.Publish("t", "p"); !errors.Is(err, fake.err) {
		t.Errorf("Publish() error = %v, want wrapped %v", err, fake.err)
	}

	if err := p.Close(); err != nil || !fake.closed {
		t.Errorf("Close() = %v, closed = %v", err, fake.closed)
	}
}

func TestNewRedisPublisher_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Port 1 on loopback refuses connections.
	if _, err := NewRedisPublisher(ctx, RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatal("NewRedisPublisher() error = nil for an unreachable server")
	}
}

func TestPublisherNames(t *testing.T) {
	tests := []struct {
		p    Publisher
		want string
	}{
		{LogPublisher{}, "log"},
		{Multi{}, "multi"},
		{newMQTTPublisher(MQTTConfig{}, &fakeMQTTClient{}), "mqtt"},
		{newRedisPublisher(RedisConfig{}, &fakeRedis{}), "redis"},
		{&recordingPublisher{}, "*publish.recordingPublisher"},
	}
	for _, tt := range tests {
		if got := nameOf(tt.p); got != tt.want {
			t.Errorf("nameOf(%T) = %s, want %s", tt.p, got, tt.want)
		}
	}
}
