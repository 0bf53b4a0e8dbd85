package zcl

// Foundation (generic) ZCL command ids.
const (
	CmdReadAttributes             uint8 = 0x00
	CmdReadAttributesResponse     uint8 = 0x01
	CmdWriteAttributes            uint8 = 0x02
	CmdWriteAttributesResponse    uint8 = 0x04
	CmdConfigureReporting         uint8 = 0x06
	CmdConfigureReportingResponse uint8 = 0x07
	CmdReportAttributes           uint8 = 0x0A
	CmdDefaultResponse            uint8 = 0x0B
)

// ZCL status codes.
const (
	StatusSuccess              uint8 = 0x00
	StatusFailure              uint8 = 0x01
	StatusUnsupportedAttribute uint8 = 0x86
	StatusInvalidValue         uint8 = 0x87
	StatusReadOnly             uint8 = 0x88
	StatusNotFound             uint8 = 0x8B
	StatusUnreportable         uint8 = 0x8C
	StatusInvalidDataType      uint8 = 0x8D
)

// Well-known cluster ids used by the command catalogue.
const (
	ClusterBasic        uint16 = 0x0000
	ClusterIdentify     uint16 = 0x0003
	ClusterGroups       uint16 = 0x0004
	ClusterOnOff        uint16 = 0x0006
	ClusterLevelControl uint16 = 0x0008
)
