// Package mqtt bridges network manager events to an MQTT broker: attribute
// reports, device lifecycle and network state are published, and permit-join
// requests are accepted on a command topic.
package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"zigbee-host/internal/network"
	"zigbee-host/internal/transport"
	"zigbee-host/internal/zcl"
	"zigbee-host/internal/zigbee"
)

// Config holds MQTT bridge configuration.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// Bridge connects a network manager to an MQTT broker.
type Bridge struct {
	client  pahomqtt.Client
	manager *network.Manager
	prefix  string
	logger  *slog.Logger
}

// NewBridge creates and connects a bridge.
func NewBridge(manager *network.Manager, cfg Config, logger *slog.Logger) (*Bridge, error) {
	b := &Bridge{
		manager: manager,
		prefix:  cfg.TopicPrefix,
		logger:  logger.With("component", "mqtt"),
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "zigbee-host"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(cfg.TopicPrefix+"/bridge/state", "offline", 1, true).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			b.logger.Info("MQTT connected")
			b.publish(b.prefix+"/bridge/state", []byte("online"), true)
			b.subscribeCommands()
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			b.logger.Warn("MQTT connection lost", "err", err)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	b.client = client
	return b, nil
}

// Start registers the bridge with the manager's listener lists.
func (b *Bridge) Start() {
	b.manager.AddCommandListener(b)
	b.manager.AddDeviceListener(b)
	b.manager.AddStateListener(b)
	b.logger.Info("MQTT bridge started", "prefix", b.prefix)
}

// Stop deregisters, publishes the offline state and disconnects.
func (b *Bridge) Stop() {
	b.manager.RemoveCommandListener(b)
	b.manager.RemoveDeviceListener(b)
	b.manager.RemoveStateListener(b)
	b.publish(b.prefix+"/bridge/state", []byte("offline"), true)
	b.client.Disconnect(1000)
	b.logger.Info("MQTT bridge stopped")
}

// CommandReceived publishes attribute reports.
func (b *Bridge) CommandReceived(cmd zigbee.Command) {
	report, ok := cmd.(*zcl.ReportAttributesCommand)
	if !ok {
		return
	}
	src, ok := report.SourceAddress().(zigbee.DeviceAddress)
	if !ok {
		return
	}
	topic, payload := BuildReportMessage(b.prefix, src, report)
	b.publish(topic, payload, true)
}

// DeviceAdded publishes the device to the bridge device topic.
func (b *Bridge) DeviceAdded(device *zigbee.Device) {
	topic, payload := BuildDeviceMessage(b.prefix, "added", device)
	b.publish(topic, payload, false)
}

// DeviceUpdated publishes the device to the bridge device topic.
func (b *Bridge) DeviceUpdated(device *zigbee.Device) {
	topic, payload := BuildDeviceMessage(b.prefix, "updated", device)
	b.publish(topic, payload, false)
}

// DeviceRemoved publishes the device to the bridge device topic.
func (b *Bridge) DeviceRemoved(device *zigbee.Device) {
	topic, payload := BuildDeviceMessage(b.prefix, "removed", device)
	b.publish(topic, payload, false)
}

// NetworkStateUpdated publishes transport state changes.
func (b *Bridge) NetworkStateUpdated(state transport.State) {
	b.publish(b.prefix+"/bridge/network_state", []byte(state.String()), true)
}

func (b *Bridge) subscribeCommands() {
	topic := b.prefix + "/bridge/request/permit_join"
	b.client.Subscribe(topic, 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		b.handlePermitJoin(msg.Payload())
	})
}

func (b *Bridge) handlePermitJoin(payload []byte) {
	var req struct {
		Duration int `json:"duration"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		b.logger.Warn("invalid permit_join payload", "err", err)
		return
	}
	if err := b.manager.PermitJoin(req.Duration); err != nil {
		b.logger.Warn("permit join failed", "err", err)
		return
	}
	b.logger.Info("permit join via MQTT", "duration", req.Duration)
}

func (b *Bridge) publish(topic string, payload []byte, retained bool) {
	token := b.client.Publish(topic, 1, retained, payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			b.logger.Warn("MQTT publish timeout", "topic", topic)
		} else if err := token.Error(); err != nil {
			b.logger.Warn("MQTT publish error", "topic", topic, "err", err)
		}
	}()
}

// BuildReportMessage renders an attribute report into its topic and JSON
// payload.
func BuildReportMessage(prefix string, src zigbee.DeviceAddress, report *zcl.ReportAttributesCommand) (string, []byte) {
	topic := fmt.Sprintf("%s/%04X/%d", prefix, src.Addr, src.Endpoint)
	attrs := make(map[string]any, len(report.Reports))
	for _, r := range report.Reports {
		attrs[fmt.Sprintf("0x%04X", r.AttributeID)] = r.Value
	}
	payload := mustJSON(map[string]any{
		"cluster":    fmt.Sprintf("0x%04X", report.ClusterID()),
		"attributes": attrs,
	})
	return topic, payload
}

// BuildDeviceMessage renders a device lifecycle event into its topic and
// JSON payload.
func BuildDeviceMessage(prefix, event string, device *zigbee.Device) (string, []byte) {
	topic := prefix + "/bridge/devices"
	payload := mustJSON(map[string]any{
		"event":    event,
		"nwk":      fmt.Sprintf("0x%04X", device.Address.Addr),
		"endpoint": device.Address.Endpoint,
		"ieee":     device.IEEE.String(),
		"profile":  fmt.Sprintf("0x%04X", device.ProfileID),
		"label":    device.Label,
	})
	return topic, payload
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
