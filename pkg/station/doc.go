// Package station models the device's Wi-Fi station interface.
//
// The provisioning pipeline only needs three things from the radio: start an
// association with a network name and secret, poll whether the association
// completed, and read the address the network assigned. Station captures that
// surface. Simulator implements it in memory for tests, the interactive console
// and hosts without a controllable radio.
package station
