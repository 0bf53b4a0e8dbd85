package network

import (
	"zigbee-host/internal/zcl"
	"zigbee-host/internal/zdo"
	"zigbee-host/internal/zigbee"
)

// ResponseMatcher decides whether an inbound command answers an in-flight
// request.
type ResponseMatcher interface {
	IsMatch(request, response zigbee.Command) bool
}

// ZclResponseMatcher is the default matcher: the response must be a ZCL
// command travelling server→client from the request's destination, on the
// same cluster, with the request's transaction id.
type ZclResponseMatcher struct{}

func (ZclResponseMatcher) IsMatch(request, response zigbee.Command) bool {
	res, ok := response.(zcl.Command)
	if !ok {
		return false
	}
	if res.Direction() != zcl.DirectionServerToClient {
		return false
	}
	if res.TransactionID() != request.TransactionID() {
		return false
	}
	if res.ClusterID() != request.ClusterID() {
		return false
	}
	return sourceMatchesDestination(request, response)
}

// ZclCustomResponseMatcher is the permissive matcher used for attribute
// reads and writes: any server→client ZCL command with the request's
// transaction id from the addressed device is accepted, so Default Responses
// satisfy the correlation too.
type ZclCustomResponseMatcher struct{}

func (ZclCustomResponseMatcher) IsMatch(request, response zigbee.Command) bool {
	res, ok := response.(zcl.Command)
	if !ok {
		return false
	}
	if res.Direction() != zcl.DirectionServerToClient {
		return false
	}
	if res.TransactionID() != request.TransactionID() {
		return false
	}
	return sourceMatchesDestination(request, response)
}

// ZdoResponseMatcher pairs a ZDO request with the response whose cluster id
// sets the response flag over the request's cluster id, from the addressed
// node.
type ZdoResponseMatcher struct{}

func (ZdoResponseMatcher) IsMatch(request, response zigbee.Command) bool {
	if _, ok := response.(zdo.Command); !ok {
		return false
	}
	if response.ClusterID() != request.ClusterID()|zdo.ResponseFlag {
		return false
	}
	return sourceMatchesDestination(request, response)
}

// sourceMatchesDestination checks that the response originates from the
// node the request was sent to. Broadcast destinations accept any source.
func sourceMatchesDestination(request, response zigbee.Command) bool {
	reqDst, ok := request.DestinationAddress().(zigbee.DeviceAddress)
	if !ok {
		return true
	}
	if reqDst.Addr >= zigbee.BroadcastLowPowerRouters {
		return true
	}
	resSrc, ok := response.SourceAddress().(zigbee.DeviceAddress)
	if !ok {
		return true
	}
	return reqDst.Addr == resSrc.Addr
}
