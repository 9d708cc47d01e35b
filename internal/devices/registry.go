package devices

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/homewatt/tariffwatch/internal/domain"
)

const (
	discoveryTopic        = "homewatt/discovery"
	discoveryRequestTopic = "homewatt/discovery/request"
	powerTopicPrefix      = "homewatt/power/"

	// CapabilityPower marks devices whose readings feed the accumulator.
	CapabilityPower = "power"
)

// announcement is what devices publish on the discovery topic.
type announcement struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

type deviceEntry struct {
	name  string
	power float64
}

// Registry tracks power-capable devices announced over MQTT and caches their
// latest readings. Updates arrive on paho's callback goroutines while the
// tick loop reads snapshots, so the cache is mutex-guarded throughout.
type Registry struct {
	client mqtt.Client

	mu      sync.RWMutex
	devices map[string]*deviceEntry
}

// NewRegistry wraps an already-connected MQTT client.
func NewRegistry(client mqtt.Client) *Registry {
	return &Registry{client: client, devices: make(map[string]*deviceEntry)}
}

// Start subscribes to discovery announcements and to the power topic tree.
func (r *Registry) Start() error {
	if token := r.client.Subscribe(discoveryTopic, 0, r.onAnnouncement); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	if token := r.client.Subscribe(powerTopicPrefix+"+", 0, r.onPower); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Close tears down the subscriptions.
func (r *Registry) Close() {
	token := r.client.Unsubscribe(discoveryTopic, powerTopicPrefix+"+")
	token.Wait()
}

// Bootstrap re-requests discovery until at least one power device is known,
// retrying after the given delay indefinitely. A registry that never fills is
// not an error; ticks simply see an empty snapshot until devices appear.
func (r *Registry) Bootstrap(ctx context.Context, retry time.Duration) {
	for {
		if len(r.ListPowerDevices()) > 0 {
			return
		}
		if token := r.client.Publish(discoveryRequestTopic, 0, false, "{}"); token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Msg("discovery request failed")
		}
		log.Info().Dur("retry", retry).Msg("no power devices yet, retrying discovery")
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

func (r *Registry) onAnnouncement(_ mqtt.Client, msg mqtt.Message) {
	var a announcement
	if err := json.Unmarshal(msg.Payload(), &a); err != nil {
		log.Error().Err(err).Msg("bad discovery payload")
		return
	}
	if a.ID == "" || !hasCapability(a.Capabilities, CapabilityPower) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.devices[a.ID]; ok {
		e.name = a.Name
		return
	}
	r.devices[a.ID] = &deviceEntry{name: a.Name}
	log.Info().Str("device", a.ID).Str("name", a.Name).Msg("power device registered")
}

func (r *Registry) onPower(_ mqtt.Client, msg mqtt.Message) {
	id := strings.TrimPrefix(msg.Topic(), powerTopicPrefix)
	watts, err := strconv.ParseFloat(strings.TrimSpace(string(msg.Payload())), 64)
	if err != nil {
		log.Error().Err(err).Str("device", id).Msg("bad power payload")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.devices[id]
	if !ok {
		// Readings may beat the announcement; track the device anyway.
		e = &deviceEntry{name: id}
		r.devices[id] = e
	}
	e.power = watts
}

// ListPowerDevices returns the known power-capable devices regardless of
// their current draw.
func (r *Registry) ListPowerDevices() []domain.DeviceSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.DeviceSnapshot, 0, len(r.devices))
	for id, e := range r.devices {
		out = append(out, domain.DeviceSnapshot{ID: id, Name: e.name, Power: e.power})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot returns the devices currently drawing power, sorted descending.
// Zero and negative readings are excluded from the snapshot, not clamped.
func (r *Registry) Snapshot() []domain.DeviceSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.DeviceSnapshot, 0, len(r.devices))
	for id, e := range r.devices {
		if e.power <= 0 {
			continue
		}
		out = append(out, domain.DeviceSnapshot{ID: id, Name: e.name, Power: e.power})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Power > out[j].Power })
	return out
}

func hasCapability(caps []string, want string) bool {
	for _, c := range caps {
		if c == want {
			return true
		}
	}
	return false
}
