package publisher

import (
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-json-experiment/json"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/config"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

const publishTimeout = 10 * time.Second

// connectTimeout bounds the initial broker connection
var connectTimeout = 10 * time.Second

// Publisher sends generation mix summaries to an MQTT broker
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
}

// New connects to the configured broker
func New(cfg config.MQTTConfig, topicPrefix string) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("MQTT publishing is not enabled in config")
	}
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	opts := mqtt.NewClientOptions()
	broker := cfg.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	opts.AddBroker(broker)
	opts.SetClientID("energyanalysis")
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connecting to MQTT broker %s: timed out after %s", broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", broker, err)
	}

	return NewWithClient(client, topicPrefix), nil
}

// NewWithClient wraps an already configured client
func NewWithClient(client mqtt.Client, topicPrefix string) *Publisher {
	return &Publisher{client: client, topicPrefix: strings.TrimSuffix(topicPrefix, "/")}
}

// Payload is the retained message body for one country
type Payload struct {
	RunID             string             `json:"run_id"`
	Country           string             `json:"country"`
	CountryName       string             `json:"country_name"`
	Start             time.Time          `json:"start"`
	End               time.Time          `json:"end"`
	ResolutionMinutes int                `json:"resolution_minutes"`
	Shares            map[string]float64 `json:"shares"`
	MaxPowerMW        float64            `json:"max_power_mw"`
	MinPowerMW        float64            `json:"min_power_mw"`
	AvgPowerMW        float64            `json:"avg_power_mw"`
	DailyVolatility   float64            `json:"daily_volatility_pct"`
	PeakTime          time.Time          `json:"peak_time"`
	TroughTime        time.Time          `json:"trough_time"`
}

// BuildPayload encodes a summary. Map keys are sorted so equal summaries give equal bytes.
func BuildPayload(s models.MixSummary) ([]byte, error) {
	p := Payload{
		RunID:             s.RunID,
		Country:           s.Country,
		CountryName:       s.CountryName,
		Start:             s.Start.UTC(),
		End:               s.End.UTC(),
		ResolutionMinutes: int(s.Resolution / time.Minute),
		Shares:            s.Shares,
		MaxPowerMW:        s.Stats.MaxPowerMW,
		MinPowerMW:        s.Stats.MinPowerMW,
		AvgPowerMW:        s.Stats.AvgPowerMW,
		DailyVolatility:   s.Stats.DailyVolatilityPct,
		PeakTime:          s.Stats.PeakTime.UTC(),
		TroughTime:        s.Stats.TroughTime.UTC(),
	}
	body, err := json.Marshal(p, json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return body, nil
}

// Topic returns the topic a country's summary is published on
func (p *Publisher) Topic(country string) string {
	return fmt.Sprintf("%s/%s/generation_mix", p.topicPrefix, strings.ToLower(country))
}

// Publish sends a summary as a retained message
func (p *Publisher) Publish(s models.MixSummary) error {
	body, err := BuildPayload(s)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.Topic(s.Country), 1, true, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing %s: timed out after %s", s.Country, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing %s: %w", s.Country, err)
	}
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
