package nrf24l01

// Test stand-ins for the hardware: a manually advanced timer, GPIO
// pins that record their levels, a register-level model of the chip's
// SPI interface, and a scripted Transceiver for scheduler tests.

type stubTimer struct {
	ms uint32
}

func (t *stubTimer) ReadMillis() uint32   { return t.ms }
func (t *stubTimer) WaitMicros(uint32)    {}
func (t *stubTimer) WaitMillis(ms uint32) { t.ms += ms }

type stubOutputPin struct {
	level   bool
	history []bool
}

func (p *stubOutputPin) Write(level bool) error {
	p.level = level
	p.history = append(p.history, level)
	return nil
}

type stubInputPin struct {
	asserted bool
}

func (p *stubInputPin) Read() (bool, error) {
	return p.asserted, nil
}

// stubChip models the nRF24L01+ SPI command set closely enough to
// exercise the driver: a register file, the RX width/payload
// registers, and FIFO flush counters.
type stubChip struct {
	regs        map[byte][]byte
	status      byte
	rxWidth     byte
	rxPayload   []byte
	txPayloads  [][]byte
	ackPayloads [][]byte
	flushedTx   int
	flushedRx   int

	// badRegister, when non-zero, reads back inverted to provoke a
	// verify failure.
	badRegister byte
}

func newStubChip() *stubChip {
	return &stubChip{regs: make(map[byte][]byte), badRegister: 0xFF}
}

func (c *stubChip) Transfer(buf []byte) error {
	cmd := buf[0]
	data := buf[1:]
	status := c.status

	switch {
	case cmd == byte(CmdNop):
	case cmd == byte(CmdReadRxPlWidth):
		if len(data) > 0 {
			data[0] = c.rxWidth
		}
	case cmd == byte(CmdReadRxPayload):
		copy(data, c.rxPayload)
	case cmd == byte(CmdWriteTxPayload):
		c.txPayloads = append(c.txPayloads, append([]byte(nil), data...))
	case cmd&0xF8 == byte(CmdWriteAckPl):
		c.ackPayloads = append(c.ackPayloads, append([]byte(nil), data...))
	case cmd == byte(CmdFlushTx):
		c.flushedTx++
	case cmd == byte(CmdFlushRx):
		c.flushedRx++
	case cmd&0xE0 == byte(CmdWriteRegister):
		addr := cmd & 0x1F
		c.regs[addr] = append([]byte(nil), data...)
	case cmd < 0x20:
		stored := c.regs[cmd]
		for i := range data {
			var v byte
			if i < len(stored) {
				v = stored[i]
			}
			if cmd == c.badRegister {
				v = ^v
			}
			data[i] = v
		}
	}

	buf[0] = status
	return nil
}

func (c *stubChip) register(addr byte) byte {
	v := c.regs[addr]
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

// stubTransceiver records everything the scheduler asks of the radio
// and feeds queued packets back through Read.
type stubTransceiver struct {
	transmitted []Packet
	acks        []Packet
	channels    []uint8
	ids         []uint64
	events      []string

	rxQueue  []Packet
	overflow bool
}

func (s *stubTransceiver) Poll()            {}
func (s *stubTransceiver) PollMillisecond() {}
func (s *stubTransceiver) Ready() bool      { return true }

func (s *stubTransceiver) IsDataReady() bool {
	return len(s.rxQueue) > 0
}

func (s *stubTransceiver) Read(p *Packet) bool {
	if len(s.rxQueue) == 0 {
		p.Size = 0
		return false
	}
	*p = s.rxQueue[0]
	s.rxQueue = s.rxQueue[1:]
	return true
}

func (s *stubTransceiver) Transmit(p *Packet) {
	s.transmitted = append(s.transmitted, *p)
	s.events = append(s.events, "tx")
}

func (s *stubTransceiver) QueueAck(p *Packet) {
	s.acks = append(s.acks, *p)
	s.events = append(s.events, "ack")
}

func (s *stubTransceiver) SelectRfChannel(c uint8) {
	s.channels = append(s.channels, c)
	s.events = append(s.events, "chan")
}

func (s *stubTransceiver) SelectId(id uint64) {
	s.ids = append(s.ids, id)
	s.events = append(s.events, "id")
}

func (s *stubTransceiver) Status() Status   { return Status{} }
func (s *stubTransceiver) RxOverflow() bool { return s.overflow }
func (s *stubTransceiver) Error() error     { return nil }

func (s *stubTransceiver) queueRx(data ...byte) {
	var p Packet
	p.Size = uint8(len(data))
	copy(p.Data[:], data)
	s.rxQueue = append(s.rxQueue, p)
}

// packetFor builds a packet from raw bytes.
func packetFor(data ...byte) Packet {
	var p Packet
	p.Size = uint8(len(data))
	copy(p.Data[:], data)
	return p
}
