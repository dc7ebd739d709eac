package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/config"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/discovery"
	blog "github.com/tagbridge-protocol/tagbridge-go/pkg/log"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/nodemgr"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/subscription"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
)

// BridgeService orchestrates one bridge instance.
type BridgeService struct {
	mu sync.RWMutex

	config config.Config
	state  State

	// Bridge instance identity for event capture.
	instanceID string

	provider   tag.Provider
	nodes      *nodemgr.Manager
	subs       *subscription.Manager
	advertiser *discovery.Advertiser

	// Logger for debug output (optional).
	logger *slog.Logger

	// Event capture sink and the file logger owned by the service.
	events    blog.Logger
	eventFile *blog.FileLogger

	// Context for the publish loop.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBridgeService creates a service for the given configuration and
// provider. logger may be nil.
func NewBridgeService(cfg config.Config, provider tag.Provider, logger *slog.Logger) (*BridgeService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	svc := &BridgeService{
		config:     cfg,
		state:      StateIdle,
		instanceID: uuid.NewString(),
		provider:   provider,
		logger:     logger,
	}

	if err := svc.setupEventCapture(); err != nil {
		return nil, err
	}

	svc.subs = subscription.NewManagerWithConfig(subscription.Config{
		MaxSubscriptions:   cfg.Subscriptions.MaxSubscriptions,
		MaxPathsPerSub:     cfg.Subscriptions.MaxPathsPerSub,
		HeartbeatMode:      subscription.HeartbeatFull,
		SuppressBounceBack: cfg.Subscriptions.SuppressBounceBack,
	})

	svc.nodes = nodemgr.NewManager(nodemgr.Config{
		Namespace:     cfg.Namespace.Index,
		Provider:      provider,
		Subscriptions: svc.subs,
		Logger:        logger,
		Events:        svc.events,
	})

	return svc, nil
}

// setupEventCapture assembles the event sink from the log config.
func (s *BridgeService) setupEventCapture() error {
	var sinks []blog.Logger

	if s.config.Log.File != "" {
		fl, err := blog.NewFileLogger(s.config.Log.File)
		if err != nil {
			return err
		}
		s.eventFile = fl
		sinks = append(sinks, fl)
	}
	if s.config.Log.Console {
		sinks = append(sinks, blog.NewSlogAdapter(s.logger))
	}

	switch len(sinks) {
	case 0:
		s.events = blog.NoopLogger{}
	case 1:
		s.events = stampedLogger{id: s.instanceID, next: sinks[0]}
	default:
		s.events = stampedLogger{id: s.instanceID, next: blog.NewMultiLogger(sinks...)}
	}
	return nil
}

// stampedLogger fills in the bridge instance ID on every event.
type stampedLogger struct {
	id   string
	next blog.Logger
}

func (l stampedLogger) Log(event blog.Event) {
	if event.BridgeID == "" {
		event.BridgeID = l.id
	}
	l.next.Log(event)
}

// InstanceID returns the bridge instance UUID.
func (s *BridgeService) InstanceID() string {
	return s.instanceID
}

// State returns the service state.
func (s *BridgeService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Nodes returns the node manager the protocol framework drives.
func (s *BridgeService) Nodes() *nodemgr.Manager {
	return s.nodes
}

// Subscriptions returns the client subscription manager.
func (s *BridgeService) Subscriptions() *subscription.Manager {
	return s.subs
}

// Start builds the address space and begins serving. Build failures
// degrade to a partial tree rather than failing startup.
func (s *BridgeService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateRunning
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	if err := s.nodes.CreateAddressSpace(ctx, nodemgr.ExternalRoot{
		BrowseName: s.config.Namespace.RootName,
	}); err != nil {
		// Already-active is the only cause and state says otherwise.
		s.logger.Error("create address space", "err", err)
	}

	s.wg.Add(1)
	go s.publishLoop()

	if s.config.Discovery.Enabled {
		s.startDiscovery()
	}

	s.logger.Info("bridge service running",
		"instance_id", s.instanceID,
		"namespace", s.config.Namespace.URI)
	return nil
}

// startDiscovery begins mDNS advertisement of the bridge endpoint.
// Advertisement failures are logged, not fatal.
func (s *BridgeService) startDiscovery() {
	instanceName := s.config.Discovery.InstanceName
	if instanceName == "" {
		instanceName = s.config.Namespace.RootName
	}

	tagCount := 0
	if tree := s.nodes.Tree(); tree != nil {
		tagCount = tree.VariableCount()
	}

	s.advertiser = discovery.NewAdvertiser(discovery.AdvertiserConfig{
		InstanceName: instanceName,
		Port:         s.config.Discovery.Port,
		NamespaceURI: s.config.Namespace.URI,
		TagCount:     tagCount,
		Interface:    s.config.Discovery.Interface,
	})
	if err := s.advertiser.Start(); err != nil {
		s.logger.Warn("mDNS advertisement failed", "err", err)
		s.advertiser = nil
	}
}

// publishLoop flushes pending subscription notifications at the
// configured publish interval.
func (s *BridgeService) publishLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Subscriptions.PublishInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.subs.ProcessNotifications()
		}
	}
}

// Stop tears everything down: advertisement, the publish loop, the
// address space (releasing all device subscriptions), and event
// capture. Stop is idempotent.
func (s *BridgeService) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.state = StateStopped
	cancel := s.cancel
	s.mu.Unlock()

	if s.advertiser != nil {
		s.advertiser.Stop()
	}

	cancel()
	s.wg.Wait()

	s.nodes.DeleteAddressSpace()

	if s.eventFile != nil {
		_ = s.eventFile.Close()
	}

	s.logger.Info("bridge service stopped", "instance_id", s.instanceID)
}
