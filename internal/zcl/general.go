package zcl

import (
	"fmt"

	"zigbee-host/internal/serialization"
)

// ReadAttributesCommand requests one or more attribute values (0x00).
type ReadAttributesCommand struct {
	Base
	Identifiers []uint16
}

func (*ReadAttributesCommand) CommandID() uint8     { return CmdReadAttributes }
func (*ReadAttributesCommand) Direction() Direction { return DirectionClientToServer }
func (*ReadAttributesCommand) Generic() bool        { return true }

func (c *ReadAttributesCommand) Serialize(s *serialization.FieldSerializer) error {
	for _, id := range c.Identifiers {
		s.WriteUint16(id)
	}
	return s.Err()
}

func (c *ReadAttributesCommand) Deserialize(d *serialization.FieldDeserializer) error {
	for d.Remaining() >= 2 {
		c.Identifiers = append(c.Identifiers, d.ReadUint16())
	}
	return d.Err()
}

// ReadAttributeStatusRecord is one result in a Read Attributes Response.
type ReadAttributeStatusRecord struct {
	AttributeID uint16
	Status      uint8
	DataType    DataType
	Value       any
}

// ReadAttributesResponse carries read results (0x01).
type ReadAttributesResponse struct {
	Base
	Records []ReadAttributeStatusRecord
}

func (*ReadAttributesResponse) CommandID() uint8     { return CmdReadAttributesResponse }
func (*ReadAttributesResponse) Direction() Direction { return DirectionServerToClient }
func (*ReadAttributesResponse) Generic() bool        { return true }

func (c *ReadAttributesResponse) Serialize(s *serialization.FieldSerializer) error {
	for _, r := range c.Records {
		s.WriteUint16(r.AttributeID)
		s.WriteUint8(r.Status)
		if r.Status != StatusSuccess {
			continue
		}
		s.WriteUint8(uint8(r.DataType))
		if err := WriteValue(s, r.DataType, r.Value); err != nil {
			return err
		}
	}
	return s.Err()
}

func (c *ReadAttributesResponse) Deserialize(d *serialization.FieldDeserializer) error {
	for d.Remaining() >= 3 {
		r := ReadAttributeStatusRecord{
			AttributeID: d.ReadUint16(),
			Status:      d.ReadUint8(),
		}
		if r.Status == StatusSuccess {
			r.DataType = DataType(d.ReadUint8())
			v, err := ReadValue(d, r.DataType)
			if err != nil {
				return err
			}
			r.Value = v
		}
		if err := d.Err(); err != nil {
			return err
		}
		c.Records = append(c.Records, r)
	}
	return d.Err()
}

// WriteAttributeRecord is one attribute in a Write Attributes command.
type WriteAttributeRecord struct {
	AttributeID uint16
	DataType    DataType
	Value       any
}

// WriteAttributesCommand writes one or more attribute values (0x02).
type WriteAttributesCommand struct {
	Base
	Records []WriteAttributeRecord
}

func (*WriteAttributesCommand) CommandID() uint8     { return CmdWriteAttributes }
func (*WriteAttributesCommand) Direction() Direction { return DirectionClientToServer }
func (*WriteAttributesCommand) Generic() bool        { return true }

func (c *WriteAttributesCommand) Serialize(s *serialization.FieldSerializer) error {
	for _, r := range c.Records {
		s.WriteUint16(r.AttributeID)
		s.WriteUint8(uint8(r.DataType))
		if err := WriteValue(s, r.DataType, r.Value); err != nil {
			return err
		}
	}
	return s.Err()
}

func (c *WriteAttributesCommand) Deserialize(d *serialization.FieldDeserializer) error {
	for d.Remaining() >= 3 {
		r := WriteAttributeRecord{
			AttributeID: d.ReadUint16(),
			DataType:    DataType(d.ReadUint8()),
		}
		v, err := ReadValue(d, r.DataType)
		if err != nil {
			return err
		}
		r.Value = v
		c.Records = append(c.Records, r)
	}
	return d.Err()
}

// WriteAttributeStatusRecord is one result in a Write Attributes Response.
// An all-success response carries a single success status with no attribute
// identifier.
type WriteAttributeStatusRecord struct {
	Status      uint8
	AttributeID uint16
}

// WriteAttributesResponse carries write results (0x04).
type WriteAttributesResponse struct {
	Base
	Records []WriteAttributeStatusRecord
}

func (*WriteAttributesResponse) CommandID() uint8     { return CmdWriteAttributesResponse }
func (*WriteAttributesResponse) Direction() Direction { return DirectionServerToClient }
func (*WriteAttributesResponse) Generic() bool        { return true }

func (c *WriteAttributesResponse) Serialize(s *serialization.FieldSerializer) error {
	for _, r := range c.Records {
		s.WriteUint8(r.Status)
		if r.Status != StatusSuccess {
			s.WriteUint16(r.AttributeID)
		}
	}
	return s.Err()
}

func (c *WriteAttributesResponse) Deserialize(d *serialization.FieldDeserializer) error {
	for d.Remaining() > 0 {
		r := WriteAttributeStatusRecord{Status: d.ReadUint8()}
		if r.Status != StatusSuccess && d.Remaining() >= 2 {
			r.AttributeID = d.ReadUint16()
		}
		c.Records = append(c.Records, r)
	}
	return d.Err()
}

// ReportingConfigurationRecord configures reporting for one attribute.
// Only the attribute-reported direction (0x00) is modelled.
type ReportingConfigurationRecord struct {
	AttributeID      uint16
	DataType         DataType
	MinInterval      uint16
	MaxInterval      uint16
	ReportableChange any
}

// ConfigureReportingCommand sets up attribute reporting (0x06).
type ConfigureReportingCommand struct {
	Base
	Records []ReportingConfigurationRecord
}

func (*ConfigureReportingCommand) CommandID() uint8     { return CmdConfigureReporting }
func (*ConfigureReportingCommand) Direction() Direction { return DirectionClientToServer }
func (*ConfigureReportingCommand) Generic() bool        { return true }

func (c *ConfigureReportingCommand) Serialize(s *serialization.FieldSerializer) error {
	for _, r := range c.Records {
		s.WriteUint8(0x00) // direction: attribute reported
		s.WriteUint16(r.AttributeID)
		s.WriteUint8(uint8(r.DataType))
		s.WriteUint16(r.MinInterval)
		s.WriteUint16(r.MaxInterval)
		if r.DataType.Analog() {
			if err := WriteValue(s, r.DataType, r.ReportableChange); err != nil {
				return err
			}
		}
	}
	return s.Err()
}

func (c *ConfigureReportingCommand) Deserialize(d *serialization.FieldDeserializer) error {
	for d.Remaining() >= 8 {
		direction := d.ReadUint8()
		if direction != 0x00 {
			return fmt.Errorf("zcl: unsupported reporting direction 0x%02X", direction)
		}
		r := ReportingConfigurationRecord{
			AttributeID: d.ReadUint16(),
			DataType:    DataType(d.ReadUint8()),
			MinInterval: d.ReadUint16(),
			MaxInterval: d.ReadUint16(),
		}
		if r.DataType.Analog() {
			v, err := ReadValue(d, r.DataType)
			if err != nil {
				return err
			}
			r.ReportableChange = v
		}
		c.Records = append(c.Records, r)
	}
	return d.Err()
}

// ReportingStatusRecord is one result in a Configure Reporting Response.
type ReportingStatusRecord struct {
	Status      uint8
	AttributeID uint16
}

// ConfigureReportingResponse carries reporting setup results (0x07).
type ConfigureReportingResponse struct {
	Base
	Records []ReportingStatusRecord
}

func (*ConfigureReportingResponse) CommandID() uint8     { return CmdConfigureReportingResponse }
func (*ConfigureReportingResponse) Direction() Direction { return DirectionServerToClient }
func (*ConfigureReportingResponse) Generic() bool        { return true }

func (c *ConfigureReportingResponse) Serialize(s *serialization.FieldSerializer) error {
	for _, r := range c.Records {
		s.WriteUint8(r.Status)
		if r.Status != StatusSuccess {
			s.WriteUint8(0x00)
			s.WriteUint16(r.AttributeID)
		}
	}
	return s.Err()
}

func (c *ConfigureReportingResponse) Deserialize(d *serialization.FieldDeserializer) error {
	for d.Remaining() > 0 {
		r := ReportingStatusRecord{Status: d.ReadUint8()}
		if r.Status != StatusSuccess && d.Remaining() >= 3 {
			d.ReadUint8() // direction
			r.AttributeID = d.ReadUint16()
		}
		c.Records = append(c.Records, r)
	}
	return d.Err()
}

// AttributeReport is one attribute in a Report Attributes command.
type AttributeReport struct {
	AttributeID uint16
	DataType    DataType
	Value       any
}

// ReportAttributesCommand carries unsolicited attribute reports (0x0A).
type ReportAttributesCommand struct {
	Base
	Reports []AttributeReport
}

func (*ReportAttributesCommand) CommandID() uint8     { return CmdReportAttributes }
func (*ReportAttributesCommand) Direction() Direction { return DirectionServerToClient }
func (*ReportAttributesCommand) Generic() bool        { return true }

func (c *ReportAttributesCommand) Serialize(s *serialization.FieldSerializer) error {
	for _, r := range c.Reports {
		s.WriteUint16(r.AttributeID)
		s.WriteUint8(uint8(r.DataType))
		if err := WriteValue(s, r.DataType, r.Value); err != nil {
			return err
		}
	}
	return s.Err()
}

func (c *ReportAttributesCommand) Deserialize(d *serialization.FieldDeserializer) error {
	for d.Remaining() >= 3 {
		r := AttributeReport{
			AttributeID: d.ReadUint16(),
			DataType:    DataType(d.ReadUint8()),
		}
		v, err := ReadValue(d, r.DataType)
		if err != nil {
			return err
		}
		r.Value = v
		c.Reports = append(c.Reports, r)
	}
	return d.Err()
}

// DefaultResponse acknowledges a received command (0x0B).
type DefaultResponse struct {
	Base
	CommandIdentifier uint8
	StatusCode        uint8
}

func (*DefaultResponse) CommandID() uint8     { return CmdDefaultResponse }
func (*DefaultResponse) Direction() Direction { return DirectionServerToClient }
func (*DefaultResponse) Generic() bool        { return true }

func (c *DefaultResponse) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.CommandIdentifier)
	s.WriteUint8(c.StatusCode)
	return s.Err()
}

func (c *DefaultResponse) Deserialize(d *serialization.FieldDeserializer) error {
	c.CommandIdentifier = d.ReadUint8()
	c.StatusCode = d.ReadUint8()
	return d.Err()
}
