// Package mqtt publishes run results to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/chrissnell/isomodel/internal/types"
	"github.com/chrissnell/isomodel/pkg/config"
	"github.com/chrissnell/isomodel/pkg/isomodel"
)

const publishTimeout = 10 * time.Second

// client is the part of mqtt.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// Publisher sends each period of a run to <prefix>/<run id>/<period> and a
// retained summary to <prefix>/<run id>/summary.
type Publisher struct {
	client      client
	topicPrefix string
}

// New connects to the broker.
func New(cfg *config.MQTTData) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required")
	}

	broker := cfg.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = config.DefaultClientID
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return newPublisher(c, cfg.TopicPrefix), nil
}

func newPublisher(c client, prefix string) *Publisher {
	if prefix == "" {
		prefix = config.DefaultTopicPrefix
	}
	return &Publisher{client: c, topicPrefix: strings.TrimSuffix(prefix, "/")}
}

// PeriodPayload is the message body of one period.
type PeriodPayload struct {
	RunID   string           `json:"run_id"`
	Mode    types.Mode       `json:"mode"`
	Period  int              `json:"period"`
	Start   time.Time        `json:"start"`
	EndUses isomodel.EndUses `json:"end_uses"`
	Total   float64          `json:"total"`
}

// SummaryPayload is the retained message body describing the whole run.
type SummaryPayload struct {
	RunID    string           `json:"run_id"`
	Mode     types.Mode       `json:"mode"`
	Building string           `json:"building"`
	Location string           `json:"location,omitempty"`
	Periods  int              `json:"periods"`
	EndUses  isomodel.EndUses `json:"end_uses"`
	Total    float64          `json:"total"`
}

type message struct {
	topic    string
	retained bool
	payload  []byte
}

func (p *Publisher) messages(run *types.Run) ([]message, error) {
	base := fmt.Sprintf("%s/%s", p.topicPrefix, run.ID)
	msgs := make([]message, 0, len(run.Results)+1)

	var sum isomodel.EndUses
	for i, u := range run.Results {
		for j, v := range u {
			sum[j] += v
		}
		b, err := json.Marshal(PeriodPayload{
			RunID:   run.ID,
			Mode:    run.Mode,
			Period:  i + 1,
			Start:   run.PeriodStart(i),
			EndUses: u,
			Total:   u.Total(),
		})
		if err != nil {
			return nil, fmt.Errorf("encoding period %d: %w", i+1, err)
		}
		msgs = append(msgs, message{topic: fmt.Sprintf("%s/%d", base, i+1), payload: b})
	}

	b, err := json.Marshal(SummaryPayload{
		RunID:    run.ID,
		Mode:     run.Mode,
		Building: run.Building,
		Location: run.Location,
		Periods:  len(run.Results),
		EndUses:  sum,
		Total:    run.Total,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}
	msgs = append(msgs, message{topic: base + "/summary", retained: true, payload: b})
	return msgs, nil
}

// Publish sends every period and then the summary with QoS 1.
func (p *Publisher) Publish(ctx context.Context, run *types.Run) error {
	msgs, err := p.messages(run)
	if err != nil {
		return err
	}

	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		token := p.client.Publish(m.topic, 1, m.retained, m.payload)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("timed out publishing to %s", m.topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing to %s: %w", m.topic, err)
		}
	}
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
