package sink

import (
	"encoding/json"
	"strconv"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	stateTopicPrefix = "homewatt/state/"
	eventTopicPrefix = "homewatt/event/"
)

// Outputs is the full set of named values written each tick.
type Outputs struct {
	Tariff                string
	Rate                  float64
	Season                string
	MinutesUntilChange    int
	PeakHoursRemaining    float64
	OffpeakHoursRemaining float64
	DailyAverageRate      float64
	TariffChangesToday    int
	Power                 float64
	CostPerHour           float64
	CostToday             float64
	MonthEstimate         float64
}

// Publisher writes tick outputs and events over MQTT, optionally mirroring
// events to SNS. All writes are fire-and-forget: a failed publish is logged
// and must never abort the rest of the tick.
type Publisher struct {
	client mqtt.Client
	sns    *SNSNotifier // nil unless cloud alerts are enabled
}

// NewPublisher wraps an already-connected MQTT client. sns may be nil.
func NewPublisher(client mqtt.Client, sns *SNSNotifier) *Publisher {
	return &Publisher{client: client, sns: sns}
}

// PublishOutputs writes every named output as a retained state topic so late
// subscribers see the latest values.
func (p *Publisher) PublishOutputs(o Outputs) {
	p.writeState("tariff", o.Tariff)
	p.writeState("rate", formatFloat(o.Rate))
	p.writeState("season", o.Season)
	p.writeState("minutes_until_change", strconv.Itoa(o.MinutesUntilChange))
	p.writeState("peak_hours_remaining", formatFloat(o.PeakHoursRemaining))
	p.writeState("offpeak_hours_remaining", formatFloat(o.OffpeakHoursRemaining))
	p.writeState("daily_average_rate", formatFloat(o.DailyAverageRate))
	p.writeState("tariff_changes_today", strconv.Itoa(o.TariffChangesToday))
	p.writeState("power", formatFloat(o.Power))
	p.writeState("cost_per_hour", formatFloat(o.CostPerHour))
	p.writeState("cost_today", formatFloat(o.CostToday))
	p.writeState("month_estimate", formatFloat(o.MonthEstimate))
}

// PublishEvent emits one event as JSON under homewatt/event/<kind> and mirrors
// it to SNS when configured.
func (p *Publisher) PublishEvent(kind string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("event marshal failed")
		return
	}
	if token := p.client.Publish(eventTopicPrefix+kind, 0, false, body); token.Wait() && token.Error() != nil {
		log.Error().Err(token.Error()).Str("kind", kind).Msg("event publish failed")
	}
	if p.sns != nil {
		if err := p.sns.SendEvent(kind, string(body)); err != nil {
			log.Error().Err(err).Str("kind", kind).Msg("sns publish failed")
		}
	}
}

func (p *Publisher) writeState(name, value string) {
	if token := p.client.Publish(stateTopicPrefix+name, 0, true, value); token.Wait() && token.Error() != nil {
		log.Error().Err(token.Error()).Str("output", name).Msg("state publish failed")
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
