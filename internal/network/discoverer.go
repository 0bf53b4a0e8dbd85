package network

import (
	"context"
	"fmt"
	"sync"

	"zigbee-host/internal/zdo"
	"zigbee-host/internal/zigbee"
)

// discoverer watches for announcing devices and interrogates them: IEEE
// address, active endpoints, then a simple descriptor per endpoint. Results
// populate the mesh model.
type discoverer struct {
	m *Manager

	mu      sync.Mutex
	queue   chan uint16
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func newDiscoverer(m *Manager) *discoverer {
	return &discoverer{m: m}
}

func (d *discoverer) start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.queue = make(chan uint16, 32)
	d.ctx, d.cancel = context.WithCancel(context.Background())

	d.m.AddCommandListener(d)
	d.m.AddAnnounceListener(d)

	d.wg.Add(1)
	go d.run(d.ctx, d.queue)
}

func (d *discoverer) stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	cancel := d.cancel
	d.mu.Unlock()

	d.m.RemoveCommandListener(d)
	d.m.RemoveAnnounceListener(d)
	cancel()
	d.wg.Wait()
}

// CommandReceived watches the inbound stream for Device Announce commands.
func (d *discoverer) CommandReceived(cmd zigbee.Command) {
	if announce, ok := cmd.(*zdo.DeviceAnnounce); ok {
		d.enqueue(announce.NetworkAddress)
	}
}

// DeviceAnnounced handles transport-level announce events.
func (d *discoverer) DeviceAnnounced(nwkAddr uint16) {
	d.enqueue(nwkAddr)
}

func (d *discoverer) enqueue(nwkAddr uint16) {
	d.mu.Lock()
	queue := d.queue
	running := d.running
	d.mu.Unlock()
	if !running {
		return
	}
	select {
	case queue <- nwkAddr:
	default:
		d.m.logger.Debug("discovery queue full, dropping", "addr", fmt.Sprintf("0x%04X", nwkAddr))
	}
}

func (d *discoverer) run(ctx context.Context, queue chan uint16) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case addr := <-queue:
			d.interrogate(ctx, addr)
		}
	}
}

func (d *discoverer) interrogate(ctx context.Context, addr uint16) {
	logger := d.m.logger.With("addr", fmt.Sprintf("0x%04X", addr))
	logger.Info("discovering node")

	ieeeReq := zdo.NewIEEEAddressRequest()
	ieeeReq.NetworkAddress = addr
	ieeeReq.SetDestinationAddress(zigbee.DeviceAddress{Addr: addr})
	ieeeReq.SetSourceAddress(zigbee.DeviceAddress{})

	result, err := d.m.Unicast(ieeeReq, ZdoResponseMatcher{}).Wait(ctx)
	if err != nil {
		return
	}
	ieeeRsp, ok := result.Response().(*zdo.IEEEAddressResponse)
	if !ok || ieeeRsp.Status != zdo.StatusSuccess {
		logger.Debug("ieee address request unanswered")
		return
	}

	d.m.AddNode(&zigbee.Node{
		NetworkAddress: addr,
		IEEE:           ieeeRsp.IEEE,
		NodeType:       zigbee.NodeUnknown,
	})

	epReq := zdo.NewActiveEndpointsRequest()
	epReq.NetworkAddress = addr
	epReq.SetDestinationAddress(zigbee.DeviceAddress{Addr: addr})
	epReq.SetSourceAddress(zigbee.DeviceAddress{})

	result, err = d.m.Unicast(epReq, ZdoResponseMatcher{}).Wait(ctx)
	if err != nil {
		return
	}
	epRsp, ok := result.Response().(*zdo.ActiveEndpointsResponse)
	if !ok || epRsp.Status != zdo.StatusSuccess {
		logger.Debug("active endpoints request unanswered")
		return
	}

	for _, endpoint := range epRsp.Endpoints {
		sdReq := zdo.NewSimpleDescriptorRequest()
		sdReq.NetworkAddress = addr
		sdReq.Endpoint = endpoint
		sdReq.SetDestinationAddress(zigbee.DeviceAddress{Addr: addr})
		sdReq.SetSourceAddress(zigbee.DeviceAddress{})

		result, err = d.m.Unicast(sdReq, ZdoResponseMatcher{}).Wait(ctx)
		if err != nil {
			return
		}
		sdRsp, ok := result.Response().(*zdo.SimpleDescriptorResponse)
		if !ok || sdRsp.Status != zdo.StatusSuccess {
			logger.Debug("simple descriptor request unanswered", "endpoint", endpoint)
			continue
		}

		d.m.AddDevice(&zigbee.Device{
			Address:        zigbee.DeviceAddress{Addr: addr, Endpoint: endpoint},
			IEEE:           ieeeRsp.IEEE,
			ProfileID:      sdRsp.Descriptor.ProfileID,
			DeviceID:       sdRsp.Descriptor.DeviceID,
			InputClusters:  sdRsp.Descriptor.InputClusters,
			OutputClusters: sdRsp.Descriptor.OutputClusters,
		})
	}

	logger.Info("node discovered", "ieee", ieeeRsp.IEEE.String(), "endpoints", len(epRsp.Endpoints))
}
