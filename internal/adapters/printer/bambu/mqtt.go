package bambu

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"bambu.printjobs/internal/core/logger"
)

const printerUsername = "bblp"

// MQTTPublisher is a connection to the printer's local broker.
type MQTTPublisher struct {
	client mqtt.Client
}

// DialPrinter connects to brokerURL (normally ssl://<printer-ip>:8883) with
// the LAN access code. Printers present a self-signed certificate.
func DialPrinter(brokerURL, serial, accessCode string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("bambu-printjobs-%s-%d", serial, time.Now().UnixNano()))
	opts.SetUsername(printerUsername)
	opts.SetPassword(accessCode)
	opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("Printer MQTT connection lost", "serial", serial, "error", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to printer %s: %w", serial, token.Error())
	}

	logger.Info("Connected to printer MQTT", "broker", brokerURL, "serial", serial)
	return &MQTTPublisher{client: client}, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *MQTTPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
