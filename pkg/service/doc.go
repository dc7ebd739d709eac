// Package service wires the bridge together: configuration, the PLC
// provider, the node manager, client subscriptions, event capture and
// optional mDNS advertisement, under one Start/Stop lifecycle.
//
// The external protocol server framework talks to the node manager
// (service.Nodes()); interactive tooling and tests talk to the service
// directly.
package service
