package logshrink

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Encode writes a sealed chunk to path as a LogShrink archive.
// It flattens the template table, extracts the ten parallel record
// columns, delta-encodes the timestamp column, serialises and
// compresses each column independently, and assembles the container.
//
// Encode is total: on success path holds a complete archive; on
// failure the destination is untouched. It writes to a temp file in
// the same directory and renames over path, rather than truncating in
// place, so a failed write never corrupts an existing archive.
func Encode(chunk *Chunk, path string) error {
	container, err := encodeContainer(chunk)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".logshrink-*.tmp")
	if err != nil {
		return fmt.Errorf("logshrink: creating temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(container); err != nil {
		tmp.Close()
		return fmt.Errorf("logshrink: writing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("logshrink: closing archive: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("logshrink: renaming archive into place: %w", err)
	}
	return nil
}

func encodeContainer(chunk *Chunk) ([]byte, error) {
	records := chunk.Records()

	timestamps := make([]int64, len(records))
	priorities := make([]uint8, len(records))
	hostnameIDs := make([]*uint32, len(records))
	appNameIDs := make([]*uint32, len(records))
	procIDIDs := make([]*uint32, len(records))
	msgIDIDs := make([]*uint32, len(records))
	sdIDs := make([]*uint32, len(records))
	templateIDs := make([]uint32, len(records))
	variables := make([][]string, len(records))
	isRFC5424 := make([]bool, len(records))

	for i, r := range records {
		timestamps[i] = r.Timestamp
		priorities[i] = r.Priority
		hostnameIDs[i] = r.HostnameID
		appNameIDs[i] = r.AppNameID
		procIDIDs[i] = r.ProcIDID
		msgIDIDs[i] = r.MsgIDID
		sdIDs[i] = r.StructuredDataID
		templateIDs[i] = r.TemplateID
		variables[i] = r.Variables
		isRFC5424[i] = r.IsRFC5424
	}

	deltaTimestamps := deltaEncode(timestamps)

	blocks := make([][]byte, 10)
	raws := [][]byte{
		serializeInt64Column(deltaTimestamps),
		serializeUint8Column(priorities),
		serializeOptionalUint32Column(hostnameIDs),
		serializeOptionalUint32Column(appNameIDs),
		serializeOptionalUint32Column(procIDIDs),
		serializeOptionalUint32Column(msgIDIDs),
		serializeOptionalUint32Column(sdIDs),
		serializeUint32Column(templateIDs),
		serializeVariablesColumn(variables),
		serializeBoolColumn(isRFC5424),
	}
	for i, raw := range raws {
		block, err := compressBlock(raw)
		if err != nil {
			return nil, err
		}
		blocks[i] = block
	}

	var buf bytes.Buffer
	templates := chunk.Templates()
	putUint32(&buf, uint32(len(templates)))
	for _, t := range templates {
		putUint32(&buf, t.ID)
		putString(&buf, t.Pattern)
	}

	stringPool := chunk.StringPool()
	putUint32(&buf, uint32(len(stringPool)))
	for _, s := range stringPool {
		putString(&buf, s)
	}

	for _, block := range blocks {
		putBlock(&buf, block)
	}

	return buf.Bytes(), nil
}

// deltaEncode stores the first value then successive differences:
// out[0] = ts[0]; out[i] = ts[i] - ts[i-1] for i >= 1. An empty slice
// yields an empty slice.
func deltaEncode(timestamps []int64) []int64 {
	if len(timestamps) == 0 {
		return nil
	}
	out := make([]int64, len(timestamps))
	out[0] = timestamps[0]
	for i := 1; i < len(timestamps); i++ {
		out[i] = timestamps[i] - timestamps[i-1]
	}
	return out
}

// deltaDecode reverses deltaEncode.
func deltaDecode(deltas []int64) []int64 {
	if len(deltas) == 0 {
		return nil
	}
	out := make([]int64, len(deltas))
	out[0] = deltas[0]
	for i := 1; i < len(deltas); i++ {
		out[i] = out[i-1] + deltas[i]
	}
	return out
}
