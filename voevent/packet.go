package voevent

import (
	"encoding/xml"

	"github.com/4pisky/voeventhub.go/common"
)

// Packet is a parsed VOEvent document. Only the attributes and elements the
// cache normalizes are decoded; the original bytes are kept alongside so the
// stored payload is exactly what arrived on the wire.
type Packet struct {
	XMLName xml.Name `xml:"VOEvent"`
	Ivorn   string   `xml:"ivorn,attr"`
	Role    string   `xml:"role,attr"`
	Version string   `xml:"version,attr"`

	Who       *Who       `xml:"Who"`
	Citations *Citations `xml:"Citations"`

	raw []byte
}

type Who struct {
	Date        string `xml:"Date"`
	AuthorIVORN string `xml:"AuthorIVORN"`
}

type Citations struct {
	EventIvorns []EventIvorn `xml:"EventIVORN"`
	Description string       `xml:"Description"`
}

type EventIvorn struct {
	Cite string `xml:"cite,attr"`
	Ref  string `xml:",chardata"`
}

// Parse decodes a raw VOEvent packet.
func Parse(data []byte) (*Packet, error) {
	var p Packet
	if err := xml.Unmarshal(data, &p); err != nil {
		return nil, &MalformedDocumentError{Reason: "invalid xml", Err: err}
	}
	p.raw = data
	return &p, nil
}

// Raw returns the packet as it arrived, byte for byte.
func (p *Packet) Raw() string {
	return string(p.raw)
}

func validRole(role string) bool {
	switch role {
	case common.RoleObservation, common.RolePrediction, common.RoleUtility, common.RoleTest:
		return true
	}
	return false
}

func validCiteType(citeType string) bool {
	switch citeType {
	case common.CiteTypeFollowup, common.CiteTypeRetraction, common.CiteTypeSupersedes:
		return true
	}
	return false
}
