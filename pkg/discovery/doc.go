// Package discovery implements mDNS/DNS-SD discovery for the credential intake.
//
// # Intake Service (_smartcfg._tcp)
//
// A device waiting for credentials advertises this service while its intake
// link is open. Instance name format: <device-name>-<device-id>
// TXT records include: DN (device name), ID (device id), IM (integrity mode)
// and VER (wire version).
//
// Companion apps browse for the service, pick a device, and read IM and VER
// to decide whether to append the checksum trailer to the payload.
package discovery
