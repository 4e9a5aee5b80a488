package publisher

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-json-experiment/json"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/config"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records publishes; other mqtt.Client methods are not used
type fakeClient struct {
	mqtt.Client
	sent       []message
	err        error
	connected  bool
	disconnect bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, message{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return &fakeToken{err: c.err}
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Disconnect(uint) { c.disconnect = true }

func testSummary() models.MixSummary {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return models.MixSummary{
		RunID:       "run-1",
		Country:     "DE_LU",
		CountryName: "Germany/Luxembourg",
		Start:       start,
		End:         start.Add(240 * time.Hour),
		Resolution:  15 * time.Minute,
		Shares:      map[string]float64{"Wind": 0.4, "Solar": 0.1, "Nuclear": 0.5},
		Stats: models.GenerationStats{
			MaxPowerMW: 70000,
			MinPowerMW: 30000,
			AvgPowerMW: 50000,
			PeakTime:   start.Add(12 * time.Hour),
			TroughTime: start.Add(3 * time.Hour),
		},
	}
}

func TestPublishSendsRetainedPayload(t *testing.T) {
	client := &fakeClient{}
	p := NewWithClient(client, "energyanalysis/")

	if err := p.Publish(testSummary()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("messages: got %d, want 1", len(client.sent))
	}

	msg := client.sent[0]
	if msg.topic != "energyanalysis/de_lu/generation_mix" {
		t.Errorf("topic: got %q", msg.topic)
	}
	if !msg.retained || msg.qos != 1 {
		t.Errorf("qos/retained: got %d/%v", msg.qos, msg.retained)
	}

	var got Payload
	if err := json.Unmarshal(msg.payload, &got); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if got.Country != "DE_LU" || got.ResolutionMinutes != 15 || got.Shares["Wind"] != 0.4 {
		t.Errorf("payload: %+v", got)
	}
	if !got.PeakTime.Equal(testSummary().Stats.PeakTime) {
		t.Errorf("peak time: got %s", got.PeakTime)
	}
}

func TestBuildPayloadIsDeterministic(t *testing.T) {
	a, err := BuildPayload(testSummary())
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	for i := 0; i < 10; i++ {
		b, err := BuildPayload(testSummary())
		if err != nil {
			t.Fatalf("BuildPayload: %v", err)
		}
		if string(a) != string(b) {
			t.Fatalf("payload changed between runs:\n%s\n%s", a, b)
		}
	}
}

func TestPublishError(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	p := NewWithClient(client, "energyanalysis")

	if err := p.Publish(testSummary()); err == nil {
		t.Error("expected error")
	}
}

func TestClose(t *testing.T) {
	client := &fakeClient{connected: true}
	NewWithClient(client, "x").Close()
	if !client.disconnect {
		t.Error("Close did not disconnect")
	}
}

func TestNewRequiresEnabledBroker(t *testing.T) {
	if _, err := New(config.MQTTConfig{}, "x"); err == nil {
		t.Error("expected error when disabled")
	}
	if _, err := New(config.MQTTConfig{Enabled: true}, "x"); err == nil {
		t.Error("expected error without broker")
	}
}

func TestNewFailsOnUnreachableBroker(t *testing.T) {
	saved := connectTimeout
	connectTimeout = 500 * time.Millisecond
	defer func() { connectTimeout = saved }()

	done := make(chan error, 1)
	go func() {
		p, err := New(config.MQTTConfig{Enabled: true, Broker: "127.0.0.1:1"}, "x")
		if p != nil {
			p.Close()
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected connection error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("New did not return for an unreachable broker")
	}
}
