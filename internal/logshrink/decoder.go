package logshrink

import (
	"fmt"
	"os"
)

// Decode reads a LogShrink archive from path and rebuilds a sealed
// Chunk from it. All ten columns must decode to identical length or
// Decode fails with ErrFormatCorrupt; every template_id must resolve
// within the decoded template table.
func Decode(path string) (*Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("logshrink: reading archive: %w", err)
	}
	return decodeContainer(data)
}

func decodeContainer(data []byte) (*Chunk, error) {
	r := newByteReader(data)

	templateCount, err := r.uint32()
	if err != nil {
		return nil, err
	}
	templates := make([]Template, templateCount)
	for i := range templates {
		id, err := r.uint32()
		if err != nil {
			return nil, err
		}
		if id >= templateCount {
			return nil, fmt.Errorf("%w: template table id %d out of range (have %d templates)", ErrFormatCorrupt, id, templateCount)
		}
		pattern, err := r.string()
		if err != nil {
			return nil, err
		}
		templates[i] = Template{ID: id, Pattern: pattern}
	}

	poolCount, err := r.uint32()
	if err != nil {
		return nil, err
	}
	stringPool := make([]string, poolCount)
	for i := range stringPool {
		s, err := r.string()
		if err != nil {
			return nil, err
		}
		stringPool[i] = s
	}

	var blocks [10][]byte
	for i := range blocks {
		blocks[i], err = r.block()
		if err != nil {
			return nil, err
		}
	}

	rawColumns := make([][]byte, 10)
	for i, block := range blocks {
		rawColumns[i], err = decompressBlock(block)
		if err != nil {
			return nil, err
		}
	}

	deltaTimestamps, err := deserializeInt64Column(rawColumns[0])
	if err != nil {
		return nil, err
	}
	priorities, err := deserializeUint8Column(rawColumns[1])
	if err != nil {
		return nil, err
	}
	hostnameIDs, err := deserializeOptionalUint32Column(rawColumns[2])
	if err != nil {
		return nil, err
	}
	appNameIDs, err := deserializeOptionalUint32Column(rawColumns[3])
	if err != nil {
		return nil, err
	}
	procIDIDs, err := deserializeOptionalUint32Column(rawColumns[4])
	if err != nil {
		return nil, err
	}
	msgIDIDs, err := deserializeOptionalUint32Column(rawColumns[5])
	if err != nil {
		return nil, err
	}
	sdIDs, err := deserializeOptionalUint32Column(rawColumns[6])
	if err != nil {
		return nil, err
	}
	templateIDs, err := deserializeUint32Column(rawColumns[7])
	if err != nil {
		return nil, err
	}
	variables, err := deserializeVariablesColumn(rawColumns[8])
	if err != nil {
		return nil, err
	}
	isRFC5424, err := deserializeBoolColumn(rawColumns[9])
	if err != nil {
		return nil, err
	}

	n := len(templateIDs)
	lengths := []int{
		len(deltaTimestamps), len(priorities), len(hostnameIDs), len(appNameIDs),
		len(procIDIDs), len(msgIDIDs), len(sdIDs), len(templateIDs),
		len(variables), len(isRFC5424),
	}
	for _, l := range lengths {
		if l != n {
			return nil, fmt.Errorf("%w: column length mismatch (%d vs %d)", ErrFormatCorrupt, l, n)
		}
	}

	timestamps := deltaDecode(deltaTimestamps)

	records := make([]LogRecord, n)
	for i := 0; i < n; i++ {
		if int(templateIDs[i]) >= len(templates) {
			return nil, fmt.Errorf("%w: template id %d out of range (have %d templates)", ErrFormatCorrupt, templateIDs[i], len(templates))
		}
		records[i] = LogRecord{
			Timestamp:        timestamps[i],
			Priority:         priorities[i],
			HostnameID:       hostnameIDs[i],
			AppNameID:        appNameIDs[i],
			ProcIDID:         procIDIDs[i],
			MsgIDID:          msgIDIDs[i],
			StructuredDataID: sdIDs[i],
			TemplateID:       templateIDs[i],
			Variables:        variables[i],
			IsRFC5424:        isRFC5424[i],
		}
	}

	return fromParts(templates, stringPool, records), nil
}
