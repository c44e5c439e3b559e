package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"chemequip/internal/models"
)

// Config holds MQTT broker settings for upload events.
type Config struct {
	Broker      string
	Username    string
	Password    string
	ClientID    string
	TopicPrefix string

	// ConnectTimeout bounds the initial connection; 0 means 10s.
	ConnectTimeout time.Duration
}

// UploadEvent is the payload published after every committed upload.
type UploadEvent struct {
	FileName     string    `json:"file_name"`
	TotalRecords int       `json:"total_records"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Publisher sends upload events to an MQTT broker.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	timeout     time.Duration
}

// New connects to the broker and returns a ready publisher.
func New(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "chemequip"
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}

	// no connect retry: an unreachable broker must fail New instead of blocking startup
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(connectTimeout)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout + time.Second) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connecting to MQTT broker %s: timed out after %v", cfg.Broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", err)
	}

	return newWithClient(client, cfg.TopicPrefix), nil
}

func newWithClient(client mqtt.Client, topicPrefix string) *Publisher {
	if topicPrefix == "" {
		topicPrefix = "chemequip"
	}
	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
		timeout:     5 * time.Second,
	}
}

// UploadTopic is where upload events go.
func (p *Publisher) UploadTopic() string {
	return p.topicPrefix + "/uploads"
}

// EncodeUploadEvent builds the JSON payload for an upload history entry.
func EncodeUploadEvent(entry models.UploadHistory) ([]byte, error) {
	payload, err := json.Marshal(UploadEvent{
		FileName:     entry.FileName,
		TotalRecords: entry.TotalRecords,
		UploadedAt:   entry.UploadedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding upload event: %w", err)
	}
	return payload, nil
}

// PublishUpload sends the event with QoS 1, not retained.
func (p *Publisher) PublishUpload(ctx context.Context, entry models.UploadHistory) error {
	payload, err := EncodeUploadEvent(entry)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.UploadTopic(), 1, false, payload)

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("publishing to %s: timed out after %v", p.UploadTopic(), timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.UploadTopic(), err)
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
