package decom

import (
	"fmt"
	"unsafe"

	"github.com/lumen-space/spacepacket/bitio"
)

// FieldKind names the raw wire representation of a point's value,
// mirroring the teacher's byte constants (F1234, I12, U1234, ...) with
// Go-idiomatic names.
type FieldKind byte

// Field kinds understood by RawValue's dispatch table.
const (
	KindFloat32 FieldKind = iota
	KindFloat64
	KindInt8
	KindInt16
	KindInt32
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindString
	// KindInt16Bits and KindUint16Bits extract a sub-word bitfield
	// [BitStart,BitStop] out of a big-endian 16-bit word, matching the
	// teacher's I12b/U12b bit-extraction path.
	KindInt16Bits
	KindUint16Bits
)

// PointInfo describes a single telemetry point: where to find it in a
// packet's octets, how to interpret the raw bits, and how to convert
// the raw value into an engineering value. ByteOffset counts from the
// start of the whole packet, primary header included, matching the
// teacher's dictionary convention.
type PointInfo struct {
	APID          int32
	ID            string
	Name          string
	Documentation string
	Kind          FieldKind
	ByteOffset    uint
	ByteSize      uint
	BitStart      uint
	BitStop       uint
	UnitsIndex    int
	Conversion    func(v any) (any, error)
}

var dispatch = map[FieldKind]func(p PointInfo, buf []byte) (any, error){
	KindFloat32: func(p PointInfo, buf []byte) (any, error) {
		o := p.ByteOffset
		if uint(len(buf)) < o+4 {
			return nil, shortPacketErr(p, buf)
		}
		v := (uint32(buf[o]) << 24) | (uint32(buf[o+1]) << 16) | (uint32(buf[o+2]) << 8) | uint32(buf[o+3])
		return *(*float32)(unsafe.Pointer(&v)), nil
	},
	KindFloat64: func(p PointInfo, buf []byte) (any, error) {
		o := p.ByteOffset
		if uint(len(buf)) < o+8 {
			return nil, shortPacketErr(p, buf)
		}
		var v uint64
		for i := 0; i < 8; i++ {
			v = (v << 8) | uint64(buf[o+uint(i)])
		}
		return *(*float64)(unsafe.Pointer(&v)), nil
	},
	KindInt8: func(p PointInfo, buf []byte) (any, error) {
		o := p.ByteOffset
		if uint(len(buf)) <= o {
			return nil, shortPacketErr(p, buf)
		}
		return int8(buf[o]), nil
	},
	KindInt16: func(p PointInfo, buf []byte) (any, error) {
		o := p.ByteOffset
		if uint(len(buf)) < o+2 {
			return nil, shortPacketErr(p, buf)
		}
		return (int16(buf[o]) << 8) | int16(buf[o+1]), nil
	},
	KindInt32: func(p PointInfo, buf []byte) (any, error) {
		o := p.ByteOffset
		if uint(len(buf)) < o+4 {
			return nil, shortPacketErr(p, buf)
		}
		return (int32(buf[o]) << 24) | (int32(buf[o+1]) << 16) | (int32(buf[o+2]) << 8) | int32(buf[o+3]), nil
	},
	KindUint8: func(p PointInfo, buf []byte) (any, error) {
		o := p.ByteOffset
		if uint(len(buf)) <= o {
			return nil, shortPacketErr(p, buf)
		}
		return buf[o], nil
	},
	KindUint16: func(p PointInfo, buf []byte) (any, error) {
		o := p.ByteOffset
		if uint(len(buf)) < o+2 {
			return nil, shortPacketErr(p, buf)
		}
		return (uint16(buf[o]) << 8) | uint16(buf[o+1]), nil
	},
	KindUint32: func(p PointInfo, buf []byte) (any, error) {
		o := p.ByteOffset
		if uint(len(buf)) < o+4 {
			return nil, shortPacketErr(p, buf)
		}
		return (uint32(buf[o]) << 24) | (uint32(buf[o+1]) << 16) | (uint32(buf[o+2]) << 8) | uint32(buf[o+3]), nil
	},
	KindUint64: func(p PointInfo, buf []byte) (any, error) {
		o := p.ByteOffset
		if uint(len(buf)) < o+8 {
			return nil, shortPacketErr(p, buf)
		}
		var v uint64
		for i := 0; i < 8; i++ {
			v = (v << 8) | uint64(buf[o+uint(i)])
		}
		return v, nil
	},
	KindString: func(p PointInfo, buf []byte) (any, error) {
		o, n := p.ByteOffset, p.ByteSize
		if uint(len(buf)) < o+n {
			return nil, shortPacketErr(p, buf)
		}
		return string(buf[o : o+n]), nil
	},
	KindInt16Bits: func(p PointInfo, buf []byte) (any, error) {
		o := p.ByteOffset
		if uint(len(buf)) < o+2 {
			return nil, shortPacketErr(p, buf)
		}
		raw := (uint32(buf[o]) << 8) | uint32(buf[o+1])
		return int16(extractBitfieldSigned(raw, 16, p.BitStart, p.BitStop)), nil
	},
	KindUint16Bits: func(p PointInfo, buf []byte) (any, error) {
		o := p.ByteOffset
		if uint(len(buf)) < o+2 {
			return nil, shortPacketErr(p, buf)
		}
		raw := (uint32(buf[o]) << 8) | uint32(buf[o+1])
		length := p.BitStop - p.BitStart + 1
		shifted := raw >> (15 - p.BitStop)
		return uint16(shifted & ((1 << length) - 1)), nil
	},
}

func extractBitfieldSigned(raw uint32, wordBits int, bitStart, bitStop uint) int32 {
	shifted := raw >> (uint(wordBits-1) - bitStop)
	length := bitStop - bitStart + 1
	m := uint32(1)<<length - 1
	v := shifted & m
	signBit := uint32(1) << (length - 1)
	if v&signBit != 0 {
		return int32(v) - int32(signBit<<1)
	}
	return int32(v)
}

func shortPacketErr(p PointInfo, buf []byte) error {
	return fmt.Errorf("decom: short packet: id=%s byte_offset=%d packet_len=%d", p.ID, p.ByteOffset, len(buf))
}

// RawValue extracts the point's untyped raw value from a packet buffer.
func (p PointInfo) RawValue(buf bitio.Buffer) (any, error) {
	fn, ok := dispatch[p.Kind]
	if !ok {
		return nil, fmt.Errorf("decom: unknown field kind %d for point %s", p.Kind, p.ID)
	}
	return fn(p, buf.Bytes())
}

// Value extracts the raw value then applies the point's engineering
// conversion, if any.
func (p PointInfo) Value(buf bitio.Buffer) (any, error) {
	raw, err := p.RawValue(buf)
	if err != nil {
		return nil, fmt.Errorf("decom: raw extraction error in %s: %w", p.Name, err)
	}
	if p.Conversion == nil {
		return raw, nil
	}
	v, err := p.Conversion(raw)
	if err != nil {
		return v, fmt.Errorf("decom: conversion error in %s: %w", p.Name, err)
	}
	return v, nil
}
