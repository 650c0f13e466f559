package logshrink

import (
	"strconv"
	"strings"
	"time"
)

// Reconstructor rebuilds syslog-shaped text lines from a decoded
// chunk's records.
type Reconstructor struct {
	chunk *Chunk
}

// NewReconstructor wraps chunk for reconstruction.
func NewReconstructor(chunk *Chunk) *Reconstructor {
	return &Reconstructor{chunk: chunk}
}

// Body fills the "<*>" slots of the record's template with its
// captured variables, left to right, one-shot each. If variables runs
// short of the slots in the pattern, the remaining slots keep the
// literal "<*>"; a partial reconstruction is not an error.
func (r *Reconstructor) Body(rec LogRecord) string {
	pattern, ok := r.chunk.Pattern(rec.TemplateID)
	if !ok {
		return ""
	}

	var b strings.Builder
	next := 0
	for i, tok := range strings.Split(pattern, " ") {
		if i > 0 {
			b.WriteByte(' ')
		}
		if tok == wildcard {
			if next < len(rec.Variables) {
				b.WriteString(rec.Variables[next])
				next++
				continue
			}
		}
		b.WriteString(tok)
	}
	return b.String()
}

func (r *Reconstructor) resolve(id *uint32) string {
	if id == nil {
		return "-"
	}
	s, ok := r.chunk.ResolveString(*id)
	if !ok {
		return "-"
	}
	return s
}

// Line formats the full reconstructed syslog line for a record,
// RFC 5424-shaped or RFC 3164-shaped depending on the record's flag.
func (r *Reconstructor) Line(rec LogRecord) string {
	host := r.resolve(rec.HostnameID)
	body := r.Body(rec)
	ts := time.UnixMilli(rec.Timestamp).UTC()

	if rec.IsRFC5424 {
		app := r.resolve(rec.AppNameID)
		proc := r.resolve(rec.ProcIDID)
		msgid := r.resolve(rec.MsgIDID)
		sd := r.resolve(rec.StructuredDataID)
		return strings.Join([]string{
			"<" + strconv.Itoa(int(rec.Priority)) + ">1",
			ts.Format(time.RFC3339),
			host, app, proc, msgid,
			"[" + sd + "]",
			body,
		}, " ")
	}

	return "<" + strconv.Itoa(int(rec.Priority)) + ">" + ts.Format("Jan 02 15:04:05") + " " + host + " " + body
}

// Haystack concatenates the fields a substring filter searches over:
// header fields, reconstructed body, and priority.
func (r *Reconstructor) Haystack(rec LogRecord) string {
	return strings.ToLower(strings.Join([]string{
		r.resolve(rec.HostnameID),
		r.resolve(rec.AppNameID),
		r.resolve(rec.ProcIDID),
		r.resolve(rec.MsgIDID),
		r.resolve(rec.StructuredDataID),
		r.Body(rec),
		strconv.Itoa(int(rec.Priority)),
	}, " "))
}
