package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"bambu.printjobs/internal/core/domain"
	"bambu.printjobs/internal/core/logger"
)

// Publisher mirrors job snapshots and invocation events onto an MQTT broker
// for dashboards that cannot hold a WebSocket open.
//
// Topics:
//
//	{prefix}/jobs    retained, latest job list
//	{prefix}/events  print_requested / print_failed
type Publisher struct {
	client mqtt.Client
	prefix string
}

func NewPublisher(brokerURL, prefix string) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("bambu-printjobs-%d", time.Now().UnixNano()))
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	logger.Info("Connected to MQTT broker", "broker", brokerURL)
	return newPublisher(client, prefix), nil
}

func newPublisher(client mqtt.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = "bambu/printjobs"
	}
	return &Publisher{client: client, prefix: prefix}
}

// PublishEvent implements ports.EventPublisher.
func (p *Publisher) PublishEvent(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.prefix+"/events", false, data)
}

// PushSnapshot implements ports.SnapshotSink.
func (p *Publisher) PushSnapshot(ctx context.Context, jobs []domain.PrintJob) {
	data, err := json.Marshal(map[string]any{"jobs": domain.SnapshotJobs(jobs)})
	if err != nil {
		return
	}
	if err := p.publish(ctx, p.prefix+"/jobs", true, data); err != nil {
		logger.WarnContext(ctx, "MQTT: failed to publish job snapshot", "error", err)
	}
}

func (p *Publisher) publish(ctx context.Context, topic string, retained bool, payload []byte) error {
	token := p.client.Publish(topic, 0, retained, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) IsConnected() bool {
	return p.client.IsConnected()
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
