package speech

// Minimal EBML walker for the webm streams Edge produces: opus packets
// live in SimpleBlock elements inside Clusters inside the Segment, one
// packet per block, no lacing. Everything else is skipped.

const (
	ebmlIDHeader      = 0x1A45DFA3
	ebmlIDSegment     = 0x18538067
	ebmlIDCluster     = 0x1F43B675
	ebmlIDSimpleBlock = 0xA3
)

// extractOpusPackets scans a webm byte stream and returns the raw opus
// packets in order. Malformed trailing data is ignored: synthesis
// arrives chunked and the final cluster may be truncated.
func extractOpusPackets(data []byte) [][]byte {
	var packets [][]byte
	walkEBML(data, func(id uint64, payload []byte) {
		if id != ebmlIDSimpleBlock {
			return
		}
		if pkt, ok := simpleBlockPayload(payload); ok {
			packets = append(packets, pkt)
		}
	})
	return packets
}

// walkEBML visits every element, descending into Segment and Cluster.
func walkEBML(data []byte, visit func(id uint64, payload []byte)) {
	pos := 0
	for pos < len(data) {
		id, n := readElementID(data[pos:])
		if n == 0 {
			return
		}
		pos += n

		size, n, unknown := readElementSize(data[pos:])
		if n == 0 {
			return
		}
		pos += n

		if unknown || int(size) > len(data)-pos {
			// Streaming masters use unknown size; truncated data
			// is treated the same way: descend to the end.
			size = uint64(len(data) - pos)
		}
		payload := data[pos : pos+int(size)]

		switch id {
		case ebmlIDSegment, ebmlIDCluster:
			walkEBML(payload, visit)
		default:
			visit(id, payload)
		}
		pos += int(size)
	}
}

// simpleBlockPayload strips the block header (track number vint, 16-bit
// timecode, flags byte) and returns the frame data.
func simpleBlockPayload(block []byte) ([]byte, bool) {
	_, n := readVint(block)
	if n == 0 || len(block) < n+3 {
		return nil, false
	}
	flags := block[n+2]
	if flags&0x06 != 0 {
		// Laced blocks never occur in this stream; skip them
		// rather than misparse.
		return nil, false
	}
	return block[n+3:], true
}

// readElementID reads an EBML element id. Unlike sizes, ids keep their
// marker bits.
func readElementID(data []byte) (uint64, int) {
	if len(data) == 0 {
		return 0, 0
	}
	length := vintLength(data[0])
	if length == 0 || length > 4 || len(data) < length {
		return 0, 0
	}
	var id uint64
	for i := 0; i < length; i++ {
		id = id<<8 | uint64(data[i])
	}
	return id, length
}

// readElementSize reads an EBML size vint with the marker stripped.
// unknown reports the all-ones "unknown size" value.
func readElementSize(data []byte) (size uint64, n int, unknown bool) {
	size, n = readVint(data)
	if n == 0 {
		return 0, 0, false
	}
	max := uint64(1)<<(7*n) - 1
	return size, n, size == max
}

// readVint reads a variable-length integer with the marker bit cleared.
func readVint(data []byte) (uint64, int) {
	if len(data) == 0 {
		return 0, 0
	}
	length := vintLength(data[0])
	if length == 0 || length > 8 || len(data) < length {
		return 0, 0
	}
	v := uint64(data[0]) & (0xFF >> length)
	for i := 1; i < length; i++ {
		v = v<<8 | uint64(data[i])
	}
	return v, length
}

// vintLength returns the byte length encoded by the leading bits.
func vintLength(first byte) int {
	if first == 0 {
		return 0
	}
	length := 1
	for mask := byte(0x80); mask != 0 && first&mask == 0; mask >>= 1 {
		length++
	}
	return length
}
