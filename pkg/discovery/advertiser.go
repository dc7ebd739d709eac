package discovery

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Service constants for mDNS advertisement.
const (
	// ServiceType is the OPC UA LDS-ME service type.
	ServiceType = "_opcua-tcp._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// MaxInstanceNameLen caps the instance name per RFC 6763.
	MaxInstanceNameLen = 63
)

// AdvertiserConfig configures an Advertiser.
type AdvertiserConfig struct {
	// InstanceName is the service instance name.
	InstanceName string

	// Port is the advertised endpoint port.
	Port uint16

	// NamespaceURI is published in the TXT record.
	NamespaceURI string

	// TagCount is the size of the bridged catalog, published in the
	// TXT record.
	TagCount int

	// Interface restricts advertisement to one named network
	// interface. Empty advertises on all interfaces.
	Interface string

	// TTL overrides the mDNS record TTL (0 = library default).
	TTL time.Duration
}

// Advertiser announces the bridge endpoint via zeroconf.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser; nothing is announced until
// Start is called.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config}
}

// getInterfaces returns the network interfaces to advertise on.
// Returns nil to use all interfaces.
func (a *Advertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Start registers the service instance. A previous registration is
// replaced.
func (a *Advertiser) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	instanceName := a.config.InstanceName
	if instanceName == "" {
		instanceName = "TagBridge"
	}
	if len(instanceName) > MaxInstanceNameLen {
		instanceName = instanceName[:MaxInstanceNameLen]
	}

	txtRecords := []string{
		fmt.Sprintf("nsuri=%s", a.config.NamespaceURI),
		fmt.Sprintf("tags=%d", a.config.TagCount),
		"caps=LDS",
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		instanceName,
		ServiceType,
		Domain,
		int(a.config.Port),
		txtRecords,
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register endpoint service: %w", err)
	}

	a.server = server
	return nil
}

// Stop withdraws the advertisement. Safe to call repeatedly.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}
