package zcl

import "testing"

func TestRegistryGenericLookup(t *testing.T) {
	r := DefaultRegistry()

	factory := r.Get(FrameTypeEntireProfile, ClusterOnOff, CmdReadAttributes, DirectionClientToServer)
	if factory == nil {
		t.Fatal("read attributes not resolved")
	}
	if _, ok := factory().(*ReadAttributesCommand); !ok {
		t.Errorf("factory produced %T", factory())
	}

	// Generic lookups ignore the cluster id.
	factory = r.Get(FrameTypeEntireProfile, 0xFFFF, CmdDefaultResponse, DirectionServerToClient)
	if factory == nil {
		t.Fatal("default response not resolved")
	}
	if _, ok := factory().(*DefaultResponse); !ok {
		t.Errorf("factory produced %T", factory())
	}
}

func TestRegistryDirectionTables(t *testing.T) {
	r := DefaultRegistry()

	request := r.Get(FrameTypeClusterSpecific, ClusterIdentify, 0x00, DirectionClientToServer)
	if request == nil {
		t.Fatal("identify request not resolved")
	}
	if _, ok := request().(*IdentifyCommand); !ok {
		t.Errorf("request factory produced %T", request())
	}

	response := r.Get(FrameTypeClusterSpecific, ClusterIdentify, 0x00, DirectionServerToClient)
	if response == nil {
		t.Fatal("identify query response not resolved")
	}
	if _, ok := response().(*IdentifyQueryResponse); !ok {
		t.Errorf("response factory produced %T", response())
	}
}

func TestRegistryUnknownCommand(t *testing.T) {
	r := DefaultRegistry()
	if r.Get(FrameTypeClusterSpecific, 0x0006, 0x7F, DirectionClientToServer) != nil {
		t.Error("unknown command resolved")
	}
	if r.Get(FrameTypeEntireProfile, 0x0006, 0x7F, DirectionClientToServer) != nil {
		t.Error("unknown generic command resolved")
	}
}
