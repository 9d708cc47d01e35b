package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/homewatt/tariffwatch/internal/config"
)

type announcement struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

type device struct {
	announcement
	baseWatts float64
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker()).SetClientID("tariffwatch-simulator")
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	fleet := []device{
		{announcement{"sim-heater", "Storage Heater", []string{"power"}}, 1800},
		{announcement{"sim-boiler", "Water Boiler", []string{"power"}}, 1200},
		{announcement{"sim-fridge", "Fridge", []string{"power"}}, 120},
		{announcement{"sim-standby", "TV Standby", []string{"power"}}, 0},
	}

	announce := func() {
		for _, d := range fleet {
			payload, _ := json.Marshal(d.announcement)
			client.Publish("homewatt/discovery", 0, false, payload).Wait()
		}
	}
	client.Subscribe("homewatt/discovery/request", 0, func(_ mqtt.Client, _ mqtt.Message) { announce() })
	announce()

	log.Info().Int("devices", len(fleet)).Msg("simulator publishing; Ctrl+C to stop")
	for {
		for _, d := range fleet {
			watts := d.baseWatts * (0.8 + rand.Float64()*0.4)
			topic := "homewatt/power/" + d.ID
			client.Publish(topic, 0, false, fmt.Sprintf("%.1f", watts)).Wait()
		}
		time.Sleep(15 * time.Second)
	}
}
