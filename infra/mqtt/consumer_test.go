package mqtt

import (
	"context"
	"fmt"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/opfleet/fleethealth/core/model"
)

type recordedSub struct {
	topic    string
	qos      byte
	callback paho.MessageHandler
}

// fakeClient implements pahoClient and enough of paho.Client to be passed
// to OnConnect.
type fakeClient struct {
	opts        *paho.ClientOptions
	subscribed  []recordedSub
	connectErr  error
	disconnects int
}

func (f *fakeClient) IsConnected() bool { return true }
func (f *fakeClient) Connect() paho.Token {
	if f.connectErr != nil {
		return &fakeToken{err: f.connectErr}
	}
	if f.opts != nil && f.opts.OnConnect != nil {
		f.opts.OnConnect(f)
	}
	return &fakeToken{}
}
func (f *fakeClient) Disconnect(uint) { f.disconnects++ }
func (f *fakeClient) Subscribe(topic string, qos byte, cb paho.MessageHandler) paho.Token {
	f.subscribed = append(f.subscribed, recordedSub{topic, qos, cb})
	return &fakeToken{}
}
func (f *fakeClient) Publish(string, byte, bool, interface{}) paho.Token { return &fakeToken{} }
func (f *fakeClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &fakeToken{}
}
func (f *fakeClient) Unsubscribe(...string) paho.Token        { return &fakeToken{} }
func (f *fakeClient) AddRoute(string, paho.MessageHandler)    {}
func (f *fakeClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (f *fakeClient) IsConnectionOpen() bool                  { return true }

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (t fakeToken) Error() error                   { return t.err }

type fakeMessage struct {
	topic string
	p     []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.p }
func (m fakeMessage) Ack()              {}

type telemetrySink struct{ recorded []model.Telemetry }

func (s *telemetrySink) Record(_ context.Context, t model.Telemetry) (model.Telemetry, error) {
	s.recorded = append(s.recorded, t)
	return t, nil
}

type predictionSink struct {
	recorded []model.Prediction
	err      error
}

func (s *predictionSink) Record(_ context.Context, p model.Prediction) (model.Prediction, error) {
	if s.err != nil {
		return model.Prediction{}, s.err
	}
	s.recorded = append(s.recorded, p)
	return p, nil
}

func withFakeClient(t *testing.T) *fakeClient {
	t.Helper()
	fc := &fakeClient{}
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { fc.opts = o; return fc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
	return fc
}

func TestConsumerSubscribesIngestTopics(t *testing.T) {
	fc := withFakeClient(t)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", QoS: map[string]byte{"telemetry": 0, "prediction": 1}}
	_, err := NewConsumer(cfg, &telemetrySink{}, &predictionSink{})
	if err != nil {
		t.Fatalf("consumer: %v", err)
	}
	if len(fc.subscribed) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(fc.subscribed))
	}
	if fc.subscribed[0].topic != "fleet/+/telemetry" || fc.subscribed[1].topic != "fleet/+/prediction" {
		t.Fatalf("unexpected topics: %+v", fc.subscribed)
	}
	if fc.subscribed[1].qos != 1 {
		t.Fatalf("prediction qos not applied")
	}
}

func TestTelemetryMessageRouted(t *testing.T) {
	withFakeClient(t)
	sink := &telemetrySink{}
	c, err := NewConsumer(Config{Broker: "tcp://localhost:1883", ClientID: "id"}, sink, &predictionSink{})
	if err != nil {
		t.Fatalf("consumer: %v", err)
	}

	payload := `{"timestamp":"2026-09-01T10:00:00Z","engine_temp":92.5,"error_codes":["P0128"]}`
	c.onTelemetry(nil, fakeMessage{topic: "fleet/veh-1/telemetry", p: []byte(payload)})

	if len(sink.recorded) != 1 {
		t.Fatalf("telemetry not recorded")
	}
	got := sink.recorded[0]
	if got.VehicleID != "veh-1" {
		t.Fatalf("vehicle id not taken from topic: %q", got.VehicleID)
	}
	if got.EngineTemp == nil || *got.EngineTemp != 92.5 {
		t.Fatalf("payload not decoded: %+v", got)
	}
}

func TestPredictionMessageRouted(t *testing.T) {
	withFakeClient(t)
	sink := &predictionSink{}
	c, err := NewConsumer(Config{Broker: "tcp://localhost:1883", ClientID: "id"}, &telemetrySink{}, sink)
	if err != nil {
		t.Fatalf("consumer: %v", err)
	}

	payload := `{"component":"brakes","failure_probability":0.8,"confidence_score":0.9,"is_critical":true}`
	c.onPrediction(nil, fakeMessage{topic: "fleet/veh-2/prediction", p: []byte(payload)})

	if len(sink.recorded) != 1 {
		t.Fatalf("prediction not recorded")
	}
	got := sink.recorded[0]
	if got.VehicleID != "veh-2" || got.Component != model.ComponentBrakes {
		t.Fatalf("prediction mis-routed: %+v", got)
	}
}

func TestMalformedPayloadDropped(t *testing.T) {
	withFakeClient(t)
	tel := &telemetrySink{}
	pred := &predictionSink{}
	c, err := NewConsumer(Config{Broker: "tcp://localhost:1883", ClientID: "id"}, tel, pred)
	if err != nil {
		t.Fatalf("consumer: %v", err)
	}

	c.onTelemetry(nil, fakeMessage{topic: "fleet/veh-1/telemetry", p: []byte("{garbage")})
	c.onPrediction(nil, fakeMessage{topic: "not/a/fleet/topic/x", p: []byte("{}")})
	c.onPrediction(nil, fakeMessage{topic: "fleet/veh-1/prediction", p: []byte("{garbage")})

	if len(tel.recorded) != 0 || len(pred.recorded) != 0 {
		t.Fatalf("malformed messages must not reach the services")
	}
}

func TestRecordErrorDoesNotPanic(t *testing.T) {
	withFakeClient(t)
	pred := &predictionSink{err: fmt.Errorf("store down")}
	c, err := NewConsumer(Config{Broker: "tcp://localhost:1883", ClientID: "id"}, &telemetrySink{}, pred)
	if err != nil {
		t.Fatalf("consumer: %v", err)
	}
	c.onPrediction(nil, fakeMessage{topic: "fleet/veh-1/prediction", p: []byte(`{"component":"engine","failure_probability":0.5,"confidence_score":0.5}`)})
}

func TestConnectErrorSurfaces(t *testing.T) {
	fc := withFakeClient(t)
	fc.connectErr = fmt.Errorf("broker unreachable")
	_, err := NewConsumer(Config{Broker: "tcp://localhost:1883", ClientID: "id"}, &telemetrySink{}, &predictionSink{})
	if err == nil {
		t.Fatalf("expected connect error")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}
