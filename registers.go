package nrf24l01

// SPI command set of the nRF24L01+.
// See the Nordic nRF24L01+ product specification, section 8.3.1.
type Command byte

const (
	CmdReadRegister   Command = 0x00 // OR'd with the register address
	CmdWriteRegister  Command = 0x20 // OR'd with the register address
	CmdReadRxPayload  Command = 0x61
	CmdWriteTxPayload Command = 0xA0
	CmdFlushTx        Command = 0xE1
	CmdFlushRx        Command = 0xE2
	CmdReadRxPlWidth  Command = 0x60
	CmdWriteAckPl     Command = 0xA8 // pipe number in the low 3 bits
	CmdNop            Command = 0xFF
)

// Register addresses.
const (
	CONFIG      = 0x00
	EN_AA       = 0x01
	EN_RXADDR   = 0x02
	SETUP_AW    = 0x03
	SETUP_RETR  = 0x04
	RF_CH       = 0x05
	RF_SETUP    = 0x06
	STATUS      = 0x07
	OBSERVE_TX  = 0x08
	RPD         = 0x09
	RX_ADDR_P0  = 0x0A
	TX_ADDR     = 0x10
	RX_PW_P0    = 0x11
	FIFO_STATUS = 0x17
	DYNPD       = 0x1C
	FEATURE     = 0x1D
)

// CONFIG register bits.
const (
	ConfigPrimRx    = 1 << 0
	ConfigPwrUp     = 1 << 1
	ConfigCRCO      = 1 << 2
	ConfigEnCRC     = 1 << 3
	ConfigMaskMaxRT = 1 << 4
	ConfigMaskTxDS  = 1 << 5
	ConfigMaskRxDR  = 1 << 6
)

// STATUS register bits.
const (
	StatusMaxRT = 1 << 4
	StatusTxDS  = 1 << 5
	StatusRxDR  = 1 << 6

	// All clearable interrupt flags.
	statusIRQMask = StatusRxDR | StatusTxDS | StatusMaxRT
)

// RF_SETUP register bits.
const (
	RfSetupRFPower  = 3 << 1
	RfSetupDRHigh   = 1 << 3
	RfSetupDRLow    = 1 << 5
	RfSetupContWave = 1 << 7
)

// FEATURE register bits.
const (
	FeatureEnDynAck = 1 << 0
	FeatureEnAckPay = 1 << 1
	FeatureEnDPL    = 1 << 2
)

// MaxPacketSize is the largest payload the chip's FIFO accepts.
const MaxPacketSize = 32
