// Package mqtt provides the MQTT broker connection used for sensor ingest.
//
// Devices that cannot make HTTP requests publish JSON readings to
// envsense/sensors/{kind}/reading; the service subscribes to the wildcard
// topic and feeds each message through the same validation and write path
// as the HTTP endpoints.
//
// The client also keeps a retained status message on envsense/system/status:
// "online" after every connect, "offline" on graceful shutdown, and an
// "offline" Last Will the broker publishes if the session dies.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllSensorReadings(), 1,
//	    func(topic string, payload []byte) error {
//	        kind, _ := mqtt.ParseSensorReading(topic)
//	        return handle(kind, payload)
//	    })
//
// Subscriptions are restored automatically after a reconnect.
package mqtt
