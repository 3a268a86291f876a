package nrf24l01

// RadioFactory builds the transceiver for one protocol session.  The
// manager calls it on every (re)start, since reconfiguring the radio
// means constructing a fresh driver instance.
type RadioFactory func(Options) Transceiver

// Manager presents the slot API to the outside world.  It owns the
// protocol (and through it the radio), surfaces newly received slots
// through a one-shot callback, and mutes transmission when no fresh
// application writes have arrived within the configured timeout.
type Manager struct {
	config   Config
	newRadio RadioFactory

	protocol *Protocol

	lastBitfields [NumRemotes]uint32
	lastChannel   uint8

	// Configured priorities, kept across idle mutes so a new write
	// resumes with the slot's intended bandwidth share.
	priorities [NumRemotes][NumSlots]uint32

	timeoutRemaining uint32

	// OnSlots is called with the bitfield bits that changed since the
	// previous poll whenever new slots have been received from a remote.
	OnSlots func(remote int, changed uint32)

	// OnChannel is called on every hop when print_channels is set.
	OnChannel func(channel uint8)
}

// NewManager builds a manager.  Call Start before polling.
func NewManager(newRadio RadioFactory, config Config) *Manager {
	m := &Manager{
		config:   config,
		newRadio: newRadio,
	}
	// Until an application says otherwise, every slot may be sent in
	// every priority window.
	for r := range m.priorities {
		for s := range m.priorities[r] {
			m.priorities[r][s] = 0xFFFFFFFF
		}
	}
	return m
}

// Start brings up the radio and scheduler.
func (m *Manager) Start() {
	m.restart()
}

// UpdateConfig applies a changed configuration, tearing down and
// recreating the scheduler and radio.
func (m *Manager) UpdateConfig(config Config) {
	m.config = config
	m.restart()
}

func (m *Manager) restart() {
	nrf := m.newRadio(m.config.radioOptions())
	var ids [NumRemotes]uint64
	for i := range ids {
		ids[i] = m.config.id(i)
	}
	m.protocol = NewProtocol(nrf, ProtocolOptions{
		Ptx: m.config.Ptx,
		Ids: ids,
	})
	m.lastBitfields = [NumRemotes]uint32{}
	m.lastChannel = m.protocol.Channel()
	m.timeoutRemaining = m.config.TransmitTimeoutMs
}

// Config returns the configuration in effect.
func (m *Manager) Config() Config {
	return m.config
}

// Poll services the radio and reports any newly received slots.
func (m *Manager) Poll() {
	m.protocol.Poll()

	for remote := 0; remote < NumRemotes; remote++ {
		current := m.protocol.Remote(remote).SlotBitfield()
		if changed := current ^ m.lastBitfields[remote]; changed != 0 {
			if m.OnSlots != nil {
				m.OnSlots(remote, changed)
			}
		}
		m.lastBitfields[remote] = current
	}

	channel := m.protocol.Channel()
	if m.config.PrintChannels && channel != m.lastChannel && m.OnChannel != nil {
		m.OnChannel(channel)
	}
	m.lastChannel = channel
}

// PollMillisecond advances the frame timer and the idle timeout.
func (m *Manager) PollMillisecond() {
	if m.timeoutRemaining > 0 {
		m.timeoutRemaining--
		if m.timeoutRemaining == 0 && m.config.TransmitTimeoutMs != 0 {
			m.disableTransmit()
		}
	}
	m.protocol.PollMillisecond()
}

// SetTxSlot replaces one transmit slot and rearms the idle timeout.
func (m *Manager) SetTxSlot(remote, index int, slot Slot) {
	remote = clampIndex(remote, NumRemotes)
	index = clampIndex(index, NumSlots)
	m.protocol.Remote(remote).SetTxSlot(index, slot)
	m.priorities[remote][index] = slot.Priority
	m.timeoutRemaining = m.config.TransmitTimeoutMs
}

// WriteTxSlot stores payload bytes into a transmit slot using the
// slot's configured priority, and rearms the idle timeout.
func (m *Manager) WriteTxSlot(remote, index int, data []byte) {
	remote = clampIndex(remote, NumRemotes)
	index = clampIndex(index, NumSlots)
	var slot Slot
	slot.Priority = m.priorities[remote][index]
	slot.Size = uint8(len(data))
	copy(slot.Data[:], data)
	m.protocol.Remote(remote).SetTxSlot(index, slot)
	m.timeoutRemaining = m.config.TransmitTimeoutMs
}

// SetPriority updates a slot's priority mask, both the stored value
// and the live slot.
func (m *Manager) SetPriority(remote, index int, priority uint32) {
	remote = clampIndex(remote, NumRemotes)
	index = clampIndex(index, NumSlots)
	m.priorities[remote][index] = priority
	rem := m.protocol.Remote(remote)
	slot := rem.TxSlot(index)
	slot.Priority = priority
	rem.SetTxSlot(index, slot)
}

// TxSlot returns a transmit slot.
func (m *Manager) TxSlot(remote, index int) Slot {
	return m.protocol.Remote(clampIndex(remote, NumRemotes)).TxSlot(clampIndex(index, NumSlots))
}

// RxSlot returns a receive slot.
func (m *Manager) RxSlot(remote, index int) Slot {
	return m.protocol.Remote(clampIndex(remote, NumRemotes)).RxSlot(clampIndex(index, NumSlots))
}

// SlotBitfield returns the change bitfield for a remote.
func (m *Manager) SlotBitfield(remote int) uint32 {
	return m.protocol.Remote(clampIndex(remote, NumRemotes)).SlotBitfield()
}

// Channel returns the channel currently in use.
func (m *Manager) Channel() uint8 {
	return m.protocol.Channel()
}

// ErrorBits returns the protocol error register.
func (m *Manager) ErrorBits() uint32 {
	return m.protocol.ErrorBits()
}

// RadioStatus returns the radio's status snapshot.
func (m *Manager) RadioStatus() Status {
	return m.protocol.Radio().Status()
}

// disableTransmit zeroes the effective priority of every transmit
// slot, which stops all transmission until the next external write.
func (m *Manager) disableTransmit() {
	for remote := 0; remote < NumRemotes; remote++ {
		rem := m.protocol.Remote(remote)
		for index := 0; index < NumSlots; index++ {
			slot := rem.TxSlot(index)
			slot.Priority = 0
			rem.SetTxSlot(index, slot)
		}
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
