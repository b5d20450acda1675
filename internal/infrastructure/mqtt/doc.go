// Package mqtt connects Smart Home Core to the MQTT broker.
//
// Sensors and gateways publish readings on per-sensor value topics; the core
// subscribes to them for ingestion and publishes its own events, such as a
// freshly computed peak power, under the core prefix.
//
//	sensors → smarthome/sensor/{sensor_id}/value → broker → core
//	core → smarthome/core/event/{type} → broker → dashboards
//
// The client reconnects automatically and restores its subscriptions after a
// reconnect. A retained status message on smarthome/system/status, backed by
// a Last Will, lets other services see whether the core is online.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllSensorValues(), 1,
//	    func(topic string, payload []byte) error {
//	        return pipeline.Handle(ctx, topic, payload)
//	    })
package mqtt
