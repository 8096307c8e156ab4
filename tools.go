//go:build tools

package tools

// Mocks under pkg/*/mocks are generated by an installed mockery v2 binary
// in expecter mode, so no blank import is tracked here. Regenerate with:
//
//	mockery --dir pkg/uplink --name Broker --with-expecter --output pkg/uplink/mocks
//	mockery --dir pkg/station --name Station --with-expecter --output pkg/station/mocks
//	mockery --dir pkg/discovery --name Advertiser --with-expecter --output pkg/discovery/mocks
