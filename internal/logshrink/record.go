// Package logshrink implements the chunk accumulator, online template
// discoverer, string interner, template table, columnar encoder/decoder
// and reconstructor described for the LogShrink archive format.
package logshrink

import "time"

// ParsedEvent is the input to the core, produced by the syslog wire
// parsers (out of this package's scope; see internal/syslogparse).
type ParsedEvent struct {
	Priority uint8

	// Timestamp is the event time at millisecond precision. A nil
	// value means "use wall clock at accumulation time".
	Timestamp *time.Time

	Hostname       *string
	AppName        *string
	ProcID         *string
	MsgID          *string
	StructuredData *string

	Message string

	IsRFC5424 bool
}

// LogRecord is materialised once per ingested event at seal time.
type LogRecord struct {
	Timestamp int64 // ms since Unix epoch
	Priority  uint8

	HostnameID       *uint32
	AppNameID        *uint32
	ProcIDID         *uint32
	MsgIDID          *uint32
	StructuredDataID *uint32

	TemplateID uint32
	Variables  []string
	IsRFC5424  bool
}

// Facility derives the syslog facility from the priority value.
func Facility(priority uint8) uint8 { return priority >> 3 }

// Severity derives the syslog severity from the priority value.
func Severity(priority uint8) uint8 { return priority & 0x07 }
