// Package decom implements dictionary-driven decommutation: extracting
// named engineering values out of a Space Packet's user data using an
// externally supplied point table, as opposed to the compile-time
// typed extraction spacepacket.Dissector performs. It is descriptive
// tooling for the CLI and relay layers, not part of the wire-format
// core.
package decom

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
)

// Dictionary describes every packet shape a session knows about, plus
// the shared engineering-unit conversions its points reference.
type Dictionary struct {
	Packets          []PacketInfo             `json:"Packets"`
	Units            []string                 `json:"Units"`
	ListConversions  []ListConversion         `json:"ListConversions"`
	MapConversions   []MapConversion          `json:"MapConversions"`
	RangeConversions []RangeConversion        `json:"RangeConversions"`
	PolyConversions  []PolynomialConversion   `json:"PolyConversions"`

	byAPID map[int32]*PacketInfo
	byID   map[string]*PacketInfo
}

// PacketInfo describes a single packet shape: its APID and the named
// points found in its user data.
type PacketInfo struct {
	APID          int32   `json:"APID"`
	ID            string  `json:"Id"`
	Name          string  `json:"Name"`
	Documentation string  `json:"Documentation"`
	IsTable       bool    `json:"IsTable"`
	Points        []PointInfo `json:"Points"`
}

// ListConversion is an enumeration with a contiguous set of values
// starting at LowIndex.
type ListConversion struct {
	Name     string   `json:"Name"`
	Values   []string `json:"Values"`
	LowIndex int      `json:"LowIndex"`
}

// MapConversion is an enumeration whose values map from a
// non-contiguous set of raw indices.
type MapConversion struct {
	Name    string   `json:"Name"`
	Values  []string `json:"Values"`
	Indices []int    `json:"Indices"`
}

// RangeConversion maps contiguous ranges of raw values to strings.
type RangeConversion struct {
	Name   string             `json:"Name"`
	Ranges []ConversionRange  `json:"Ranges"`
}

// ConversionRange is one [Low,High] -> Value mapping used by a RangeConversion.
type ConversionRange struct {
	Low   int    `json:"Low"`
	High  int    `json:"High"`
	Value string `json:"Value"`
}

// PolynomialConversion describes an engineering-unit polynomial:
// value = sum(Coefficients[i] * raw^i).
type PolynomialConversion struct {
	Name         string    `json:"Name"`
	Order        int       `json:"Order"`
	Coefficients []float64 `json:"Coefficients"`
}

// LoadDictionary reads a (optionally gzip-compressed, by extension) JSON
// telemetry dictionary from path and indexes it for lookup.
func LoadDictionary(filename string) (*Dictionary, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("decom: opening dictionary %s: %w", filename, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var r io.Reader = br
	if path.Ext(filename) == ".gz" {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("decom: opening gzipped dictionary %s: %w", filename, err)
		}
		defer gz.Close()
		r = gz
	}

	var dict Dictionary
	if err := json.NewDecoder(r).Decode(&dict); err != nil {
		return nil, fmt.Errorf("decom: decoding dictionary %s: %w", filename, err)
	}
	dict.index()
	return &dict, nil
}

func (d *Dictionary) index() {
	d.byAPID = make(map[int32]*PacketInfo, len(d.Packets))
	d.byID = make(map[string]*PacketInfo, len(d.Packets))
	for i := range d.Packets {
		pkt := &d.Packets[i]
		d.byAPID[pkt.APID] = pkt
		d.byID[pkt.ID] = pkt
	}
}

// PacketByAPID looks up a packet's shape by its numeric APID.
func (d *Dictionary) PacketByAPID(apid int32) (*PacketInfo, bool) {
	pkt, ok := d.byAPID[apid]
	return pkt, ok
}

// PacketByID looks up a packet's shape by its dictionary ID.
func (d *Dictionary) PacketByID(id string) (*PacketInfo, bool) {
	pkt, ok := d.byID[id]
	return pkt, ok
}
