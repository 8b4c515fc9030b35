package voevent

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// Root element names of the documents carried by the transport.
const (
	rootVOEvent   = "VOEvent"
	rootTransport = "Transport"
)

// packetTypeParam is the What/Param carrying the notice type discriminator.
const packetTypeParam = "Packet_Type"

// Errors returned by ParseNotice.
var (
	// ErrNotVOEvent is returned for well-formed documents that are neither
	// a VOEvent nor a transport envelope.
	ErrNotVOEvent = errors.New("document is not a VOEvent")
	// ErrMissingNoticeType is returned when a VOEvent has no usable Packet_Type param.
	ErrMissingNoticeType = errors.New("missing notice type")
	// ErrTransportMessage is returned for VTP transport envelopes (iamalive, ack, nak).
	// They are protocol chatter, not notices.
	ErrTransportMessage = errors.New("transport message")
)

// Notice is a parsed VOEvent.
type Notice struct {
	Root   xml.Name
	IVORN  string
	Role   string
	Date   string
	Type   NoticeType
	Params map[string]string
}

// Param returns the value of a top-level What/Param.
func (n *Notice) Param(name string) (string, bool) {
	v, ok := n.Params[name]
	return v, ok
}

// Envelope is a parsed VTP transport message.
type Envelope struct {
	Role      string
	Origin    string
	Response  string
	TimeStamp string
}

type param struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// document covers both VOEvent and Transport roots. Child elements are
// unqualified in both schemas, so no namespace is set on the tags.
type document struct {
	XMLName   xml.Name
	IVORN     string  `xml:"ivorn,attr"`
	Role      string  `xml:"role,attr"`
	Date      string  `xml:"Who>Date"`
	Params    []param `xml:"What>Param"`
	Origin    string  `xml:"Origin"`
	Response  string  `xml:"Response"`
	TimeStamp string  `xml:"TimeStamp"`
}

func decodeDocument(payload []byte) (*document, error) {
	dec := xml.NewDecoder(bytes.NewReader(payload))
	dec.CharsetReader = charset.NewReaderLabel

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "parse xml")
	}
	return &doc, nil
}

// ParseNotice parses payload into a Notice. Transport envelopes yield
// ErrTransportMessage; every other failure means the payload is malformed.
func ParseNotice(payload []byte) (*Notice, error) {
	doc, err := decodeDocument(payload)
	if err != nil {
		return nil, err
	}

	switch doc.XMLName.Local {
	case rootVOEvent:
	case rootTransport:
		return nil, errors.Wrapf(ErrTransportMessage, "role %q", doc.Role)
	default:
		return nil, errors.Wrapf(ErrNotVOEvent, "root element %q", doc.XMLName.Local)
	}

	params := make(map[string]string, len(doc.Params))
	for _, p := range doc.Params {
		params[p.Name] = p.Value
	}

	raw, ok := params[packetTypeParam]
	if !ok {
		return nil, errors.Wrap(ErrMissingNoticeType, doc.IVORN)
	}
	typ, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Wrapf(ErrMissingNoticeType, "%s: %v", doc.IVORN, err)
	}

	return &Notice{
		Root:   doc.XMLName,
		IVORN:  doc.IVORN,
		Role:   doc.Role,
		Date:   strings.TrimSpace(doc.Date),
		Type:   NoticeType(typ),
		Params: params,
	}, nil
}

// ParseEnvelope parses a VTP transport message.
func ParseEnvelope(payload []byte) (*Envelope, error) {
	doc, err := decodeDocument(payload)
	if err != nil {
		return nil, err
	}
	if doc.XMLName.Local != rootTransport {
		return nil, errors.Errorf("root element %q is not a transport message", doc.XMLName.Local)
	}
	return &Envelope{
		Role:      doc.Role,
		Origin:    strings.TrimSpace(doc.Origin),
		Response:  strings.TrimSpace(doc.Response),
		TimeStamp: strings.TrimSpace(doc.TimeStamp),
	}, nil
}
