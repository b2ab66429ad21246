package keys

import (
	"encoding/binary"
)

// Prefix constants for the three triple indices.
const (
	SPOPrefix byte = 0x01 // Subject-Predicate-Object index
	OPSPrefix byte = 0x02 // Object-Predicate-Subject index
	PSOPrefix byte = 0x03 // Predicate-Subject-Object index

	// System keys (0xFF reserved for system metadata)
	SystemPrefix byte = 0xFF
)

// Key size constants
const (
	PrefixSize = 1
	IDSize     = 8

	// TripleKeySize is prefix(1) + 3*ID(8).
	TripleKeySize = PrefixSize + 3*IDSize

	// SeqSize is the size of the value stored under every index key.
	SeqSize = 8
)

// System metadata keys
var (
	KeyFactCount = []byte{SystemPrefix, 0x01} // total fact count
	KeySequence  = []byte{SystemPrefix, 0x02} // last insertion sequence handed out
)

// Layout of the three indices:
//
//	SPO: [0x01 | subject | predicate | object]
//	OPS: [0x02 | object | predicate | subject]
//	PSO: [0x03 | predicate | subject | object]
//
// BigEndian keeps lexicographic order equal to numeric order.

func encodeTriple(prefix byte, a, b, c uint64) []byte {
	key := make([]byte, TripleKeySize)
	key[0] = prefix
	binary.BigEndian.PutUint64(key[1:9], a)
	binary.BigEndian.PutUint64(key[9:17], b)
	binary.BigEndian.PutUint64(key[17:25], c)
	return key
}

func decodeTriple(prefix byte, key []byte) (a, b, c uint64, ok bool) {
	if len(key) != TripleKeySize || key[0] != prefix {
		return 0, 0, 0, false
	}
	return binary.BigEndian.Uint64(key[1:9]),
		binary.BigEndian.Uint64(key[9:17]),
		binary.BigEndian.Uint64(key[17:25]),
		true
}

// encodePrefix builds a scan prefix from the leading bound components.
// A zero component ends the prefix.
func encodePrefix(prefix byte, a, b uint64) []byte {
	if a == 0 {
		return []byte{prefix}
	}
	if b == 0 {
		out := make([]byte, PrefixSize+IDSize)
		out[0] = prefix
		binary.BigEndian.PutUint64(out[1:9], a)
		return out
	}
	out := make([]byte, PrefixSize+2*IDSize)
	out[0] = prefix
	binary.BigEndian.PutUint64(out[1:9], a)
	binary.BigEndian.PutUint64(out[9:17], b)
	return out
}

// EncodeSPOKey encodes a triple into its SPO key.
func EncodeSPOKey(subject, predicate, object uint64) []byte {
	return encodeTriple(SPOPrefix, subject, predicate, object)
}

// EncodeOPSKey encodes a triple into its OPS key.
func EncodeOPSKey(subject, predicate, object uint64) []byte {
	return encodeTriple(OPSPrefix, object, predicate, subject)
}

// EncodePSOKey encodes a triple into its PSO key.
func EncodePSOKey(subject, predicate, object uint64) []byte {
	return encodeTriple(PSOPrefix, predicate, subject, object)
}

// DecodeSPOKey decodes an SPO key back into subject, predicate, object IDs.
func DecodeSPOKey(key []byte) (subject, predicate, object uint64, ok bool) {
	return decodeTriple(SPOPrefix, key)
}

// DecodeOPSKey decodes an OPS key back into subject, predicate, object IDs.
func DecodeOPSKey(key []byte) (subject, predicate, object uint64, ok bool) {
	object, predicate, subject, ok = decodeTriple(OPSPrefix, key)
	return
}

// DecodePSOKey decodes a PSO key back into subject, predicate, object IDs.
func DecodePSOKey(key []byte) (subject, predicate, object uint64, ok bool) {
	predicate, subject, object, ok = decodeTriple(PSOPrefix, key)
	return
}

// DecodeKey decodes a key of any of the three indices.
func DecodeKey(key []byte) (subject, predicate, object uint64, ok bool) {
	if len(key) != TripleKeySize {
		return 0, 0, 0, false
	}
	switch key[0] {
	case SPOPrefix:
		return DecodeSPOKey(key)
	case OPSPrefix:
		return DecodeOPSKey(key)
	case PSOPrefix:
		return DecodePSOKey(key)
	}
	return 0, 0, 0, false
}

// EncodeSPOPrefix creates a prefix for SPO range scans.
func EncodeSPOPrefix(subject, predicate uint64) []byte {
	return encodePrefix(SPOPrefix, subject, predicate)
}

// EncodeOPSPrefix creates a prefix for OPS range scans.
func EncodeOPSPrefix(object, predicate uint64) []byte {
	return encodePrefix(OPSPrefix, object, predicate)
}

// EncodePSOPrefix creates a prefix for PSO range scans.
func EncodePSOPrefix(predicate, subject uint64) []byte {
	return encodePrefix(PSOPrefix, predicate, subject)
}

// EncodeSeq encodes an insertion sequence number as an index value.
func EncodeSeq(seq uint64) []byte {
	buf := make([]byte, SeqSize)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}

// DecodeSeq decodes an index value. Malformed values decode to 0.
func DecodeSeq(val []byte) uint64 {
	if len(val) < SeqSize {
		return 0
	}
	return binary.BigEndian.Uint64(val[:SeqSize])
}
