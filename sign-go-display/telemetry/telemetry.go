package telemetry

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"sign-tools/sign-go-display/display"
)

const stateTopic = "sign/display/state"

// outputPayload is the wire form of a committed display output. Retained on
// the broker so late subscribers see the current state immediately.
type outputPayload struct {
	Mode        string `json:"mode"`
	Message     string `json:"message,omitempty"`
	MessageName string `json:"message_name,omitempty"`
	ActiveCount int    `json:"active_count"`
	VideoName   string `json:"video_name,omitempty"`
	VideoIndex  int    `json:"video_index"`
	VideoCount  int    `json:"video_count"`
	Generated   string `json:"generated"`
}

// Client publishes display state changes to an MQTT broker. It satisfies
// display.Publisher.
type Client struct {
	mqtt   mqtt.Client
	logger *log.Logger
}

// NewClient connects to the broker. Auto-reconnect is left on so a broker
// restart does not take the publisher down with it.
func NewClient(brokerURL, clientID string, logger *log.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(5 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		logger.Printf("MQTT connected to %s", brokerURL)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Printf("MQTT connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, err)
	}
	return &Client{mqtt: client, logger: logger}, nil
}

// PublishOutput sends the committed output as retained JSON. Publish errors
// are logged, never propagated; telemetry must not disturb the display.
func (c *Client) PublishOutput(out display.Output) {
	payload := outputPayload{
		Mode:        out.Mode.String(),
		ActiveCount: out.ActiveCount,
		VideoIndex:  out.VideoIndex,
		VideoCount:  out.VideoCount,
		Generated:   out.Generated.Format(time.RFC3339),
	}
	if out.Message != nil {
		payload.Message = out.Message.Text
		payload.MessageName = out.Message.Config.Name
	}
	if out.Video != nil {
		payload.VideoName = out.Video.Name
	}

	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Printf("ERROR: Failed to marshal telemetry payload: %v", err)
		return
	}
	token := c.mqtt.Publish(stateTopic, 1, true, data)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			c.logger.Printf("ERROR: Telemetry publish failed: %v", err)
		}
	}()
}

// Close disconnects from the broker, allowing in-flight publishes to drain.
func (c *Client) Close() {
	c.mqtt.Disconnect(250)
}
