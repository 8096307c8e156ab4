// Package uplink reports a successful provisioning over publish/subscribe.
//
// The Reporter dials the broker until it answers, using a fresh random client
// id per attempt and a fixed pause between attempts. Once connected it
// subscribes to the confirmation topic and publishes exactly one confirmation.
// A failed publish is not retried.
//
// The broker itself sits behind the Broker interface. MQTTBroker implements it
// over Eclipse Paho.
//
// Example:
//
//	r := uplink.NewReporter(cfg, uplink.NewMQTTBroker(uplink.MQTTOptions{}))
//	if err := r.Report(ctx, addr, cred); err != nil {
//	    // logged; the device stays joined
//	}
//	defer r.Close()
package uplink
