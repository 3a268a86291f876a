package nrf24l01

import "sort"

const (
	// SlotPeriodMs is the frame period: one transmit opportunity per
	// frame.
	SlotPeriodMs = 20

	// NumSlots is the number of application slots per direction.
	NumSlots = 16

	// NumRemotes is how many receivers one transmitter can service.
	NumRemotes = 2

	// NumPriorities is the number of priority windows the per-frame
	// scheduler cycles through.
	NumPriorities = 16

	// SlotDataSize is the payload capacity of one slot.
	SlotDataSize = 16
)

// Error register bits reported by ErrorBits.
const (
	ErrorFraming    = 1 << 0
	ErrorRxOverflow = 1 << 1
)

// Slot is one application payload buffer.  Priority bit k makes the
// slot a transmit candidate in priority window k; zero disables it.
// Age counts frames since the slot was last sent (TX side) or last
// refreshed (RX side).
type Slot struct {
	Priority uint32
	Size     uint8
	Age      uint32
	Data     [SlotDataSize]byte
}

// ReceiveMode is the receiver's synchronisation state.
type ReceiveMode int

const (
	Synchronizing ReceiveMode = iota
	Locked
)

// Transceiver is the radio surface the protocol drives.  *Radio
// implements it; tests substitute a scripted fake.
type Transceiver interface {
	Poll()
	PollMillisecond()
	Ready() bool
	IsDataReady() bool
	Read(*Packet) bool
	Transmit(*Packet)
	QueueAck(*Packet)
	SelectRfChannel(uint8)
	SelectId(uint64)
	Status() Status
	RxOverflow() bool
	Error() error
}

// Remote is the per-receiver half of a link: sixteen slots in each
// direction plus the change bitfield for received slots.
type Remote struct {
	id            uint64
	txSlots       [NumSlots]Slot
	rxSlots       [NumSlots]Slot
	bitfield      uint32
	priorityCount uint8
}

// Id returns the remote's link identifier; zero means disabled.
func (rem *Remote) Id() uint64 {
	return rem.id
}

// TxSlot returns transmit slot i.
func (rem *Remote) TxSlot(i int) Slot {
	return rem.txSlots[i]
}

// SetTxSlot replaces transmit slot i wholesale.
func (rem *Remote) SetTxSlot(i int, slot Slot) {
	rem.txSlots[i] = slot
}

// RxSlot returns receive slot i.
func (rem *Remote) RxSlot(i int) Slot {
	return rem.rxSlots[i]
}

// SlotBitfield returns two bits per receive slot.  The low bit of a
// pair is set once the slot has ever been received; the high bit
// toggles on every refresh, so XOR against a previous snapshot
// detects updates even when the payload is unchanged.
func (rem *Remote) SlotBitfield() uint32 {
	return rem.bitfield
}

func (rem *Remote) recordRxSlot(index int, data []byte) {
	slot := &rem.rxSlots[index]
	slot.Age = 0
	slot.Size = uint8(len(data))
	copy(slot.Data[:], data)

	shift := uint(index * 2)
	pair := (rem.bitfield >> shift) & 0x3
	if pair == 0 {
		pair = 0x3
	} else {
		pair ^= 0x2
	}
	rem.bitfield = (rem.bitfield &^ (0x3 << shift)) | pair<<shift
}

// prepareTxPacket packs this frame's payload: every slot ages one
// frame, then the candidates of the current priority window are taken
// oldest first until the packet is full.  A slot that does not fit is
// skipped, which lets a smaller younger slot behind it ride along.
func (rem *Remote) prepareTxPacket(packet *Packet) {
	for i := range rem.txSlots {
		rem.txSlots[i].Age++
	}

	mask := uint32(1) << rem.priorityCount
	var candidates [NumSlots]int
	n := 0
	for i := range rem.txSlots {
		if rem.txSlots[i].Priority&mask != 0 {
			candidates[n] = i
			n++
		}
	}
	// Oldest first; equal ages keep slot-index order.
	sort.SliceStable(candidates[:n], func(a, b int) bool {
		return rem.txSlots[candidates[a]].Age > rem.txSlots[candidates[b]].Age
	})

	packet.Size = 0
	for _, idx := range candidates[:n] {
		slot := &rem.txSlots[idx]
		if AppendSlot(packet, idx, slot.Data[:slot.Size]) {
			slot.Age = 0
		}
	}

	rem.priorityCount = (rem.priorityCount + 1) % NumPriorities
}

// ProtocolOptions configures one protocol session.
type ProtocolOptions struct {
	Ptx bool

	// Ids of the remotes this link addresses.  Index 0 is the primary
	// and seeds the hop schedule; an id of zero disables that remote.
	// A receiver uses index 0 only.
	Ids [NumRemotes]uint64
}

// Protocol runs the slot scheduler over one radio: the 20 ms frame
// cadence, the per-frame packing, the channel hops, and on the
// receiving side the synchronisation state machine.
type Protocol struct {
	nrf     Transceiver
	options ProtocolOptions

	remotes      [NumRemotes]Remote
	lastTxRemote int

	channels     [NumChannels]uint8
	channelIndex uint8

	slotTimer   int32
	receiveMode ReceiveMode
	rxMissCount uint32

	errorBits uint32

	rxPacket Packet
	txPacket Packet
}

// NewProtocol builds a scheduler over an already-constructed radio.
// The protocol owns the radio from here on.
func NewProtocol(nrf Transceiver, options ProtocolOptions) *Protocol {
	p := &Protocol{
		nrf:          nrf,
		options:      options,
		lastTxRemote: NumRemotes - 1,
		channels:     genChannelTable(uint32(options.Ids[0])),
		slotTimer:    SlotPeriodMs,
		receiveMode:  Synchronizing,
	}
	for i := range p.remotes {
		p.remotes[i].id = options.Ids[i]
	}
	return p
}

// Remote returns the state for remote i.
func (p *Protocol) Remote(i int) *Remote {
	return &p.remotes[i]
}

// Channel returns the channel number currently in use.
func (p *Protocol) Channel() uint8 {
	return p.channels[p.channelIndex]
}

// ChannelTable returns the full hop sequence.
func (p *Protocol) ChannelTable() [NumChannels]uint8 {
	return p.channels
}

// Mode returns the receiver's synchronisation state.
func (p *Protocol) Mode() ReceiveMode {
	return p.receiveMode
}

// ErrorBits returns the sticky protocol error register.
func (p *Protocol) ErrorBits() uint32 {
	bits := p.errorBits
	if p.nrf.RxOverflow() {
		bits |= ErrorRxOverflow
	}
	return bits
}

// Radio exposes the owned transceiver for status queries.
func (p *Protocol) Radio() Transceiver {
	return p.nrf
}

// Poll services the radio and consumes any received payload.  On a
// receiver a reception also (re)locks the frame timer, since the
// transmitter's cadence is the canonical clock.
func (p *Protocol) Poll() {
	p.nrf.Poll()

	if !p.nrf.IsDataReady() {
		return
	}
	p.nrf.Read(&p.rxPacket)

	rem := &p.remotes[p.lastTxRemote]
	if !p.options.Ptx {
		rem = &p.remotes[0]
		p.receiveMode = Locked
		p.slotTimer = SlotPeriodMs
		p.rxMissCount = 0
	}

	for i := range rem.rxSlots {
		rem.rxSlots[i].Age++
	}
	if !DecodePacket(&p.rxPacket, rem.recordRxSlot) {
		p.errorBits |= ErrorFraming
	}
}

// PollMillisecond advances the frame timer.  On the transmitter the
// channel hops two milliseconds before each frame's transmit so the
// PLL settles first; on a locked receiver it hops at the frame
// midpoint, keeping both ends on the same channel for the transmit
// window, and queues the ACK payload for the next reception.
func (p *Protocol) PollMillisecond() {
	p.nrf.PollMillisecond()

	p.slotTimer--

	if p.options.Ptx {
		switch p.slotTimer {
		case 2:
			p.switchChannel()
		case 0:
			p.transmitCycle()
			p.slotTimer = SlotPeriodMs
		}
		return
	}

	switch {
	case p.slotTimer == 0:
		p.slotTimer = SlotPeriodMs
		p.rxMissCount++
		if p.receiveMode == Synchronizing {
			// Dwell on each channel for more than 20 silent
			// frames, then try the next one.
			if p.rxMissCount > 20 {
				p.switchChannel()
				p.rxMissCount = 0
			}
		} else if p.rxMissCount > 5 {
			p.receiveMode = Synchronizing
		}
	case p.slotTimer == SlotPeriodMs/2 && p.receiveMode == Locked:
		p.switchChannel()
		p.replyCycle()
	}
}

func (p *Protocol) switchChannel() {
	p.channelIndex = (p.channelIndex + 1) % NumChannels
	p.nrf.SelectRfChannel(p.channels[p.channelIndex])
}

func (p *Protocol) transmitCycle() {
	next := p.nextEnabledRemote()
	if next < 0 {
		return
	}
	if next != p.lastTxRemote {
		p.nrf.SelectId(p.remotes[next].id)
		p.lastTxRemote = next
	}
	p.remotes[next].prepareTxPacket(&p.txPacket)
	// The frame goes out even when empty: the transmission is what
	// gives the receiver its opportunity to ACK back.
	p.nrf.Transmit(&p.txPacket)
}

func (p *Protocol) replyCycle() {
	rem := &p.remotes[0]
	rem.prepareTxPacket(&p.txPacket)
	p.nrf.QueueAck(&p.txPacket)
}

func (p *Protocol) nextEnabledRemote() int {
	for i := 1; i <= NumRemotes; i++ {
		idx := (p.lastTxRemote + i) % NumRemotes
		if p.remotes[idx].id != 0 {
			return idx
		}
	}
	return -1
}
