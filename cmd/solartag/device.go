package main

import (
	"context"
	"time"

	"codeberg.org/mutker/solartag/internal/alarm"
	"codeberg.org/mutker/solartag/internal/battery"
	"codeberg.org/mutker/solartag/internal/clock"
	"codeberg.org/mutker/solartag/internal/config"
	"codeberg.org/mutker/solartag/internal/cycle"
	"codeberg.org/mutker/solartag/internal/journal"
	"codeberg.org/mutker/solartag/internal/logger"
	"codeberg.org/mutker/solartag/internal/metrics"
	"codeberg.org/mutker/solartag/internal/render"
	"codeberg.org/mutker/solartag/internal/telemetry"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttTimeout = 10 * time.Second

// device is the per-boot hardware context plus what must be released when
// the cycle ends.
type device struct {
	cycle.Device
	link    *telemetry.Client
	journal journal.Service
	mqtt    mqtt.Client
}

func newDevice(_ context.Context, cfg *config.Config) (*device, error) {
	log := logger.Default()

	loc, err := clock.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	client, err := telemetry.NewClient(cfg.Endpoint, telemetry.WithTimeout(cfg.FetchTimeout))
	if err != nil {
		return nil, err
	}

	d := &device{link: client}
	d.Fetcher = client
	d.Log = log

	if cfg.TimeURL != "" {
		d.Clock = clock.NewHTTP(cfg.TimeURL, loc, nil)
	} else {
		d.Clock = clock.NewSystem(loc)
	}

	if cfg.BatteryPath != "" {
		d.Sensor = battery.NewSysfsSensor(cfg.BatteryPath)
	} else {
		d.Sensor = battery.NewFixedSensor(cfg.BatteryVoltage)
	}

	if cfg.Mode == config.ModeOneshot {
		d.Alarm = alarm.NewRTC(cfg.WakealarmPath)
	} else {
		d.Alarm = alarm.NewNoop()
	}

	renderers := []render.Renderer{render.NewLogRenderer(log)}
	if cfg.MQTTBroker != "" {
		c, err := render.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID, mqttTimeout)
		if err != nil {
			renderers = append(renderers, render.Unavailable(err))
		} else {
			d.mqtt = c
			renderers = append(renderers, render.NewMQTTRenderer(c, cfg.MQTTTopic, mqttTimeout))
		}
	}
	d.Renderer = render.Multi(renderers...)

	jcfg := journal.DefaultConfig()
	jcfg.Enabled = cfg.Journal
	jcfg.DBPath = cfg.JournalDB
	jcfg.RetentionDays = cfg.RetentionDays
	if svc, err := journal.NewService(jcfg, log); err != nil {
		log.Warn().Err(err).Msg("Journal unavailable, cycles will not be recorded")
	} else {
		d.journal = svc
		d.Recorders = append(d.Recorders, svc)
	}

	d.Recorders = append(d.Recorders, metrics.NewExporter(cfg.MetricsFile))

	return d, nil
}

func (d *device) Close() {
	if d.journal != nil {
		if err := d.journal.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close journal")
		}
	}
	if d.mqtt != nil {
		d.mqtt.Disconnect(250)
	}
}
