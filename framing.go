package nrf24l01

// Sublayer framing: each slot travels as [index:4|size:4][size bytes],
// concatenated into a radio payload of at most 32 bytes.

// maxSublayerData is the largest payload the 4-bit size field can
// describe.
const maxSublayerData = 15

// AppendSlot appends one sublayer to the packet.  It reports false,
// leaving the packet unchanged, when the sublayer does not fit or its
// size cannot be encoded.
func AppendSlot(packet *Packet, index int, data []byte) bool {
	if index < 0 || index >= NumSlots || len(data) > maxSublayerData {
		return false
	}
	if int(packet.Size)+1+len(data) > MaxPacketSize {
		return false
	}
	packet.Data[packet.Size] = byte(index<<4) | byte(len(data))
	packet.Size++
	copy(packet.Data[packet.Size:], data)
	packet.Size += uint8(len(data))
	return true
}

// DecodePacket walks the packet's sublayers left to right, calling fn
// for each.  It reports false when a sublayer's declared size overruns
// the packet; parsing stops at the violating byte and the remainder is
// discarded.
func DecodePacket(packet *Packet, fn func(index int, data []byte)) bool {
	pos := 0
	size := int(packet.Size)
	for pos < size {
		header := packet.Data[pos]
		index := int(header >> 4)
		n := int(header & 0x0F)
		if pos+1+n > size {
			return false
		}
		fn(index, packet.Data[pos+1:pos+1+n])
		pos += 1 + n
	}
	return true
}
