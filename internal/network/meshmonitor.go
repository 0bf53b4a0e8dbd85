package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"zigbee-host/internal/zdo"
	"zigbee-host/internal/zigbee"
)

// meshMonitor periodically refreshes mesh health information: it walks the
// known nodes and updates their neighbor tables from Management LQI
// responses.
type meshMonitor struct {
	m *Manager

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func newMeshMonitor(m *Manager) *meshMonitor {
	return &meshMonitor{m: m}
}

func (mm *meshMonitor) start(period time.Duration) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if mm.running {
		return
	}
	mm.running = true
	mm.ctx, mm.cancel = context.WithCancel(context.Background())

	mm.wg.Add(1)
	go mm.run(mm.ctx, period)
}

func (mm *meshMonitor) stop() {
	mm.mu.Lock()
	if !mm.running {
		mm.mu.Unlock()
		return
	}
	mm.running = false
	cancel := mm.cancel
	mm.mu.Unlock()

	cancel()
	mm.wg.Wait()
}

func (mm *meshMonitor) run(ctx context.Context, period time.Duration) {
	defer mm.wg.Done()
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mm.poll(ctx)
		}
	}
}

func (mm *meshMonitor) poll(ctx context.Context) {
	for _, node := range mm.m.Nodes() {
		if ctx.Err() != nil {
			return
		}
		mm.refreshNeighbors(ctx, node)
	}
}

func (mm *meshMonitor) refreshNeighbors(ctx context.Context, node *zigbee.Node) {
	req := zdo.NewMgmtLqiRequest()
	req.SetDestinationAddress(zigbee.DeviceAddress{Addr: node.NetworkAddress})
	req.SetSourceAddress(zigbee.DeviceAddress{})

	result, err := mm.m.Unicast(req, ZdoResponseMatcher{}).Wait(ctx)
	if err != nil {
		return
	}
	rsp, ok := result.Response().(*zdo.MgmtLqiResponse)
	if !ok || rsp.Status != zdo.StatusSuccess {
		mm.m.logger.Debug("lqi request unanswered", "addr", fmt.Sprintf("0x%04X", node.NetworkAddress))
		return
	}

	neighbors := make([]zigbee.Neighbor, 0, len(rsp.Neighbors))
	for _, entry := range rsp.Neighbors {
		neighbors = append(neighbors, zigbee.Neighbor{
			NetworkAddress: entry.NetworkAddress,
			IEEE:           entry.IEEE,
			NodeType:       neighborNodeType(entry.DeviceType),
			Depth:          entry.Depth,
			LQI:            entry.LQI,
		})
	}

	updated := *node
	updated.Neighbors = neighbors
	mm.m.UpdateNode(&updated)
}

func neighborNodeType(deviceType uint8) zigbee.NodeType {
	switch deviceType {
	case 0x00:
		return zigbee.NodeCoordinator
	case 0x01:
		return zigbee.NodeRouter
	case 0x02:
		return zigbee.NodeEndDevice
	default:
		return zigbee.NodeUnknown
	}
}
