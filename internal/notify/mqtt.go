package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

// MQTTConfig configures the broker connection.
type MQTTConfig struct {
	BrokerURL   string
	ClientID    string
	TopicPrefix string
}

// MQTTPublisher publishes events as JSON to
// <prefix>/<tenant>/<event type> with QoS 1.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(cfg MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return NewMQTTPublisherWithClient(client, cfg.TopicPrefix), nil
}

// NewMQTTPublisherWithClient wraps an already configured client.
func NewMQTTPublisherWithClient(client mqtt.Client, topicPrefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: strings.TrimSuffix(topicPrefix, "/")}
}

// Topic returns the topic an event is published on.
func (p *MQTTPublisher) Topic(event Event) string {
	return fmt.Sprintf("%s/%s/%s", p.prefix, event.TenantID, event.Type)
}

// Publish sends the event and waits for the broker acknowledgement.
func (p *MQTTPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	token := p.client.Publish(p.Topic(event), 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("mqtt publish %s timed out", event.Type)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
