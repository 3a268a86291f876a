package nrf24l01

import (
	"fmt"
	"log"

	"github.com/ecc1/radio"
	"github.com/ecc1/spi"
)

// Options selects the Enhanced Shockburst parameters for one radio
// session.  Changing any of them requires constructing a new Radio.
type Options struct {
	Ptx                       bool
	Id                        uint64
	AddressLength             int // 3, 4 or 5 bytes
	DataRate                  int // 250000, 1000000 or 2000000 bps
	OutputPower               int // -18, -12, -6, 0 or +7 dBm
	EnableCRC                 bool
	CRCLength                 int // 1 or 2 bytes
	AutoRetransmitCount       int
	AutoRetransmitDelayMicros int
	AutomaticAcknowledgment   bool
	DynamicPayloadLength      bool
	InitialChannel            uint8
}

// Packet is one radio payload.
type Packet struct {
	Size uint8
	Data [MaxPacketSize]byte
}

// Bytes returns the used portion of the payload.
func (p *Packet) Bytes() []byte {
	return p.Data[:p.Size]
}

// ConfigureState tracks the power-up sequence.  It advances linearly;
// there is no way back short of constructing a new Radio.
type ConfigureState int

const (
	PowerOnReset ConfigureState = iota
	EnteringStandby
	Standby
)

// Status is a snapshot of the radio's health.
type Status struct {
	StatusReg          byte
	RetransmitExceeded uint32
}

// Radio represents one nRF24L01+ device.  Construction does not touch
// the hardware; the power-up and configuration sequence runs from
// PollMillisecond.
type Radio struct {
	conn   Conn
	device *spi.Device // non-nil only when opened via Open
	ce     OutputPin
	irq    InputPin
	timer  MillisecondTimer

	options Options

	state                ConfigureState
	startEnteringStandby uint32

	rxPacket    Packet
	isDataReady bool
	rxOverflow  bool

	retransmitExceeded uint32

	stats  radio.Statistics
	spiBuf [1 + MaxPacketSize]byte
	err    error
}

// NewRadio constructs a driver over an already-open SPI connection and
// CE/IRQ pins.  Invalid option enums latch an error immediately.
func NewRadio(conn Conn, ce OutputPin, irq InputPin, timer MillisecondTimer, options Options) *Radio {
	r := &Radio{
		conn:    conn,
		ce:      ce,
		irq:     irq,
		timer:   timer,
		options: options,
		state:   PowerOnReset,
	}
	r.err = validateOptions(&options)
	return r
}

func radioWithError(err error) *Radio {
	return &Radio{err: err}
}

func validateOptions(o *Options) error {
	switch o.AddressLength {
	case 3, 4, 5:
	default:
		return fmt.Errorf("unsupported address length %d", o.AddressLength)
	}
	switch o.DataRate {
	case 250000, 1000000, 2000000:
	default:
		return fmt.Errorf("unsupported data rate %d", o.DataRate)
	}
	switch o.OutputPower {
	case -18, -12, -6, 0, 7:
	default:
		return fmt.Errorf("unsupported output power %d", o.OutputPower)
	}
	switch o.CRCLength {
	case 1, 2:
	default:
		return fmt.Errorf("unsupported CRC length %d", o.CRCLength)
	}
	if o.InitialChannel > 124 {
		return fmt.Errorf("initial channel %d out of range", o.InitialChannel)
	}
	return nil
}

// Error returns the error state of the radio device.
func (r *Radio) Error() error {
	return r.err
}

// SetError sets the error state of the radio device.
func (r *Radio) SetError(err error) {
	r.err = err
}

// Ready reports whether the configuration sequence has completed.
func (r *Radio) Ready() bool {
	return r.state == Standby && r.err == nil
}

// Statistics returns the packet and byte counts for the radio device.
func (r *Radio) Statistics() radio.Statistics {
	return r.stats
}

// Poll services the interrupt line.  On IRQ-low it drains any received
// payload into the one-deep RX buffer, counts retransmit-exceeded
// events and clears the asserted STATUS flags.  It never blocks.
func (r *Radio) Poll() {
	if r.err != nil {
		return
	}
	asserted, err := r.irq.Read()
	if err != nil {
		r.err = err
		return
	}
	if !asserted {
		return
	}

	status := r.command(CmdNop, nil, nil)

	rxReady := status&StatusRxDR != 0
	// On a PTX with auto-ack, TX_DS may carry an ACK payload.
	if status&StatusTxDS != 0 && r.options.AutomaticAcknowledgment && r.options.Ptx {
		rxReady = true
	}
	if rxReady {
		var width [1]byte
		r.command(CmdReadRxPlWidth, nil, width[:])
		if width[0] > MaxPacketSize {
			// FIFO corruption; drop everything in it.
			r.command(CmdFlushRx, nil, nil)
		} else {
			r.rxPacket.Size = width[0]
			if width[0] > 0 {
				r.command(CmdReadRxPayload, nil, r.rxPacket.Data[:width[0]])
			}
			if r.isDataReady {
				r.rxOverflow = true
			}
			r.isDataReady = true
			r.stats.Packets.Received++
			r.stats.Bytes.Received += int(width[0])
		}
	}

	if status&StatusMaxRT != 0 {
		r.retransmitExceeded++
		r.command(CmdFlushTx, nil, nil)
	}

	if toClear := status & statusIRQMask; toClear != 0 {
		r.writeRegister(STATUS, toClear)
	}
}

// PollMillisecond advances the power-up state machine.  The chip is
// not usable for the first 100 ms after power-on, so configuration
// waits until the millisecond counter reaches 150.
func (r *Radio) PollMillisecond() {
	if r.err != nil {
		return
	}
	now := r.timer.ReadMillis()
	switch r.state {
	case PowerOnReset:
		// Hold CE low until the chip is out of reset.  The absolute
		// comparison is safe because power-on reset happens only once.
		r.writeCE(false)
		if now < 150 {
			return
		}
		r.writeRegister(CONFIG, r.configRegister())
		r.state = EnteringStandby
		r.startEnteringStandby = now
	case EnteringStandby:
		// CONFIG.PWR_UP needs 1.5 ms to take effect.
		if now-r.startEnteringStandby < 2 {
			return
		}
		r.configure()
		r.state = Standby
	case Standby:
	}
}

// IsDataReady reports whether a received payload is waiting.
func (r *Radio) IsDataReady() bool {
	return r.isDataReady
}

// Read consumes the buffered RX payload, if any.
func (r *Radio) Read(packet *Packet) bool {
	if !r.isDataReady {
		packet.Size = 0
		return false
	}
	*packet = r.rxPacket
	r.isDataReady = false
	return true
}

// RxOverflow reports whether a payload arrived before the previous one
// was consumed.  The stale payload was lost.
func (r *Radio) RxOverflow() bool {
	return r.rxOverflow
}

// Transmit enqueues the payload and pulses CE to start the transmit.
// PTX only.
func (r *Radio) Transmit(packet *Packet) {
	if r.err != nil {
		return
	}
	r.command(CmdWriteTxPayload, packet.Bytes(), nil)
	r.writeCE(true)
	r.timer.WaitMicros(10)
	r.writeCE(false)
	r.stats.Packets.Sent++
	r.stats.Bytes.Sent += int(packet.Size)
}

// QueueAck preloads an ACK payload on pipe 0.  PRX only.
func (r *Radio) QueueAck(packet *Packet) {
	if r.err != nil {
		return
	}
	r.command(CmdWriteAckPl, packet.Bytes(), nil)
	r.stats.Packets.Sent++
	r.stats.Bytes.Sent += int(packet.Size)
}

// SelectRfChannel retunes the radio.  The PLL settles within 130 us,
// well inside the scheduler's 2 ms lead.
func (r *Radio) SelectRfChannel(channel uint8) {
	r.verifyRegister(RF_CH, channel&0x7F)
}

// SelectId reprograms the Shockburst address, so a transmitter can
// talk to more than one remote through a single radio.
func (r *Radio) SelectId(id uint64) {
	addr := marshalAddress(id, r.options.AddressLength)
	r.verifyRegister(RX_ADDR_P0, addr...)
	r.verifyRegister(TX_ADDR, addr...)
}

// Status returns the raw STATUS register and the running count of
// retransmit-exceeded events.
func (r *Radio) Status() Status {
	return Status{
		StatusReg:          r.command(CmdNop, nil, nil),
		RetransmitExceeded: r.retransmitExceeded,
	}
}

// ReadRegister returns the value of a radio register.
func (r *Radio) ReadRegister(addr byte) byte {
	return r.readRegister(addr)
}

func (r *Radio) writeCE(level bool) {
	if r.err != nil {
		return
	}
	if err := r.ce.Write(level); err != nil {
		r.err = err
	}
}

func (r *Radio) configRegister() byte {
	v := byte(ConfigPwrUp)
	if !r.options.Ptx {
		v |= ConfigPrimRx
	}
	if r.options.EnableCRC {
		v |= ConfigEnCRC
	}
	if r.options.CRCLength == 2 {
		v |= ConfigCRCO
	}
	// All interrupt mask bits stay zero: RX_DR, TX_DS and MAX_RT all
	// drive the IRQ pin.
	return v
}

// configure writes and read-verifies every configuration register.
// After this the radio is in standby: a PRX goes straight to receiving
// (CE high), a PTX pulses CE per transmit.
func (r *Radio) configure() {
	r.verifyRegister(CONFIG, r.configRegister())

	if r.options.AutomaticAcknowledgment {
		r.verifyRegister(EN_AA, 0x01)
	} else {
		r.verifyRegister(EN_AA, 0x00)
	}
	r.verifyRegister(EN_RXADDR, 0x01) // pipe 0 only

	switch r.options.AddressLength {
	case 3:
		r.verifyRegister(SETUP_AW, 1)
	case 4:
		r.verifyRegister(SETUP_AW, 2)
	case 5:
		r.verifyRegister(SETUP_AW, 3)
	}

	delay := r.options.AutoRetransmitDelayMicros / 250
	if delay > 15 {
		delay = 15
	}
	count := r.options.AutoRetransmitCount
	if count > 15 {
		count = 15
	}
	r.verifyRegister(SETUP_RETR, byte(delay<<4|count))

	r.SelectRfChannel(r.options.InitialChannel)

	var rfSetup byte
	switch r.options.DataRate {
	case 250000:
		rfSetup = RfSetupDRLow
	case 1000000:
		rfSetup = 0
	case 2000000:
		rfSetup = RfSetupDRHigh
	}
	switch r.options.OutputPower {
	case -18:
		rfSetup |= 0
	case -12:
		rfSetup |= 2
	case -6:
		rfSetup |= 4
	case 0:
		rfSetup |= 6
	case 7:
		rfSetup |= 1
	}
	r.verifyRegister(RF_SETUP, rfSetup)

	r.SelectId(r.options.Id)

	dynamic := r.options.DynamicPayloadLength || r.options.AutomaticAcknowledgment
	if dynamic {
		r.verifyRegister(DYNPD, 1)
	} else {
		r.verifyRegister(DYNPD, 0)
	}

	var feature byte
	if dynamic {
		feature |= FeatureEnDPL
	}
	if r.options.AutomaticAcknowledgment {
		feature |= FeatureEnAckPay | FeatureEnDynAck
	}
	r.verifyRegister(FEATURE, feature)

	if verbose {
		log.Printf("configured: %+v", r.options)
	}

	// A receiver listens continuously.
	if !r.options.Ptx {
		r.writeCE(true)
	}
}
