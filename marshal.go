package nrf24l01

// Marshaling of Shockburst addresses: the low addressLength bytes of
// the link id, in little-endian order.

func marshalAddress(id uint64, addressLength int) []byte {
	addr := make([]byte, addressLength)
	for i := range addr {
		addr[i] = byte(id >> (8 * i))
	}
	return addr
}
