package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	valkeylib "github.com/valkey-io/valkey-go"
)

const relayTopic = "socialbot:realtime"

// relayMessage tags each event with the instance that produced it so the
// subscriber can skip its own events.
type relayMessage struct {
	SenderID string          `json:"sender_id"`
	Channel  string          `json:"channel"`
	Payload  json.RawMessage `json:"payload"`
}

// ValkeyRelay shares realtime events between server instances over Valkey
// (or Redis) pub/sub.
type ValkeyRelay struct {
	client   valkeylib.Client
	hub      *Hub
	senderID string
}

// NewValkeyRelay connects to addr and checks the connection with a ping.
func NewValkeyRelay(addr, password, senderID string, hub *Hub) (*ValkeyRelay, error) {
	client, err := valkeylib.NewClient(valkeylib.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey: %w", err)
	}
	return &ValkeyRelay{client: client, hub: hub, senderID: senderID}, nil
}

func (r *ValkeyRelay) Publish(ctx context.Context, payload []byte) error {
	var ev struct {
		Channel string `json:"channel"`
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	data, err := json.Marshal(relayMessage{SenderID: r.senderID, Channel: ev.Channel, Payload: payload})
	if err != nil {
		return err
	}
	cmd := r.client.B().Publish().Channel(relayTopic).Message(string(data)).Build()
	return r.client.Do(ctx, cmd).Error()
}

// Run delivers events published by other instances to local clients until
// ctx is done.
func (r *ValkeyRelay) Run(ctx context.Context) {
	logrus.Info("[WS] starting valkey subscriber for realtime events")
	err := r.client.Receive(ctx, r.client.B().Subscribe().Channel(relayTopic).Build(), func(msg valkeylib.PubSubMessage) {
		var m relayMessage
		if err := json.Unmarshal([]byte(msg.Message), &m); err != nil {
			logrus.Warnf("[WS] bad relay message: %v", err)
			return
		}
		if m.SenderID == r.senderID {
			return
		}
		r.hub.Deliver(m.Channel, m.Payload)
	})
	if err != nil && ctx.Err() == nil {
		logrus.Errorf("[WS] valkey subscriber stopped: %v", err)
	}
}

func (r *ValkeyRelay) Close() {
	r.client.Close()
}
