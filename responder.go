package voevent

import (
	"bytes"
	"encoding/xml"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Transport roles used by VTP.
const (
	RoleIAmAlive = "iamalive"
	RoleAck      = "ack"
	RoleNak      = "nak"
)

const transportNamespace = "http://telescope-networks.org/schema/Transport/v1.1"

// responder answers broker traffic on behalf of a subscriber.
type responder struct {
	ivorn  string
	codec  Codec
	logger Logger
	now    func() time.Time
}

// respond writes the reply payload calls for, if any. Only write errors
// are returned; payloads it cannot make sense of are left to the dispatcher.
func (r *responder) respond(w io.Writer, payload []byte) error {
	doc, err := decodeDocument(payload)
	if err != nil {
		return nil
	}

	var reply []byte
	switch doc.XMLName.Local {
	case rootTransport:
		if doc.Role != RoleIAmAlive {
			r.logger.Debug("ignoring transport message", "role", doc.Role)
			return nil
		}
		reply = FormResponse(RoleIAmAlive, doc.Origin, r.ivorn, r.now())
	case rootVOEvent:
		reply = FormResponse(RoleAck, doc.IVORN, r.ivorn, r.now())
	default:
		return nil
	}

	buf, err := r.codec.Encode(reply)
	if err != nil {
		return errors.Wrap(err, "encode response")
	}
	if _, err := w.Write(buf); err != nil {
		return &TransportError{Op: "write response", Err: err}
	}
	r.logger.Debug("sent transport response", "role", doc.Role, "root", doc.XMLName.Local)
	return nil
}

// FormResponse builds a VTP Transport document.
func FormResponse(role, origin, response string, ts time.Time) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<trn:Transport role="`)
	escape(&b, role)
	b.WriteString(`" version="1.0" xmlns:trn="` + transportNamespace + `">`)
	b.WriteString(`<Origin>`)
	escape(&b, origin)
	b.WriteString(`</Origin><Response>`)
	escape(&b, response)
	b.WriteString(`</Response><TimeStamp>`)
	b.WriteString(ts.UTC().Format(time.RFC3339))
	b.WriteString(`</TimeStamp></trn:Transport>`)
	return b.Bytes()
}

func escape(b *bytes.Buffer, s string) {
	_ = xml.EscapeText(b, []byte(s))
}
