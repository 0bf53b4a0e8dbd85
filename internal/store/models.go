package store

import "zigbee-host/internal/zigbee"

// Persisted record shapes. The on-disk format is private to this adapter;
// the manager only sees the mesh model types.

type neighborRecord struct {
	NetworkAddress uint16 `json:"nwk"`
	IEEE           uint64 `json:"ieee"`
	NodeType       uint8  `json:"type"`
	Depth          uint8  `json:"depth"`
	LQI            uint8  `json:"lqi"`
}

type routeRecord struct {
	DestinationAddress uint16 `json:"dst"`
	NextHopAddress     uint16 `json:"next_hop"`
	Status             uint8  `json:"status"`
}

type nodeRecord struct {
	NetworkAddress uint16           `json:"nwk"`
	IEEE           uint64           `json:"ieee"`
	NodeType       uint8            `json:"type"`
	Neighbors      []neighborRecord `json:"neighbors,omitempty"`
	Routes         []routeRecord    `json:"routes,omitempty"`
}

type deviceRecord struct {
	NetworkAddress uint16   `json:"nwk"`
	Endpoint       uint8    `json:"endpoint"`
	IEEE           uint64   `json:"ieee"`
	ProfileID      uint16   `json:"profile"`
	DeviceID       uint16   `json:"device"`
	InputClusters  []uint16 `json:"in_clusters,omitempty"`
	OutputClusters []uint16 `json:"out_clusters,omitempty"`
	Label          string   `json:"label,omitempty"`
}

type groupRecord struct {
	ID    uint16 `json:"id"`
	Label string `json:"label,omitempty"`
}

func nodeToRecord(n *zigbee.Node) nodeRecord {
	r := nodeRecord{
		NetworkAddress: n.NetworkAddress,
		IEEE:           uint64(n.IEEE),
		NodeType:       uint8(n.NodeType),
	}
	for _, nb := range n.Neighbors {
		r.Neighbors = append(r.Neighbors, neighborRecord{
			NetworkAddress: nb.NetworkAddress,
			IEEE:           uint64(nb.IEEE),
			NodeType:       uint8(nb.NodeType),
			Depth:          nb.Depth,
			LQI:            nb.LQI,
		})
	}
	for _, rt := range n.Routes {
		r.Routes = append(r.Routes, routeRecord{
			DestinationAddress: rt.DestinationAddress,
			NextHopAddress:     rt.NextHopAddress,
			Status:             rt.Status,
		})
	}
	return r
}

func recordToNode(r nodeRecord) *zigbee.Node {
	n := &zigbee.Node{
		NetworkAddress: r.NetworkAddress,
		IEEE:           zigbee.IEEEAddress(r.IEEE),
		NodeType:       zigbee.NodeType(r.NodeType),
	}
	for _, nb := range r.Neighbors {
		n.Neighbors = append(n.Neighbors, zigbee.Neighbor{
			NetworkAddress: nb.NetworkAddress,
			IEEE:           zigbee.IEEEAddress(nb.IEEE),
			NodeType:       zigbee.NodeType(nb.NodeType),
			Depth:          nb.Depth,
			LQI:            nb.LQI,
		})
	}
	for _, rt := range r.Routes {
		n.Routes = append(n.Routes, zigbee.Route{
			DestinationAddress: rt.DestinationAddress,
			NextHopAddress:     rt.NextHopAddress,
			Status:             rt.Status,
		})
	}
	return n
}

func deviceToRecord(d *zigbee.Device) deviceRecord {
	return deviceRecord{
		NetworkAddress: d.Address.Addr,
		Endpoint:       d.Address.Endpoint,
		IEEE:           uint64(d.IEEE),
		ProfileID:      d.ProfileID,
		DeviceID:       d.DeviceID,
		InputClusters:  d.InputClusters,
		OutputClusters: d.OutputClusters,
		Label:          d.Label,
	}
}

func recordToDevice(r deviceRecord) *zigbee.Device {
	return &zigbee.Device{
		Address:        zigbee.DeviceAddress{Addr: r.NetworkAddress, Endpoint: r.Endpoint},
		IEEE:           zigbee.IEEEAddress(r.IEEE),
		ProfileID:      r.ProfileID,
		DeviceID:       r.DeviceID,
		InputClusters:  r.InputClusters,
		OutputClusters: r.OutputClusters,
		Label:          r.Label,
	}
}
