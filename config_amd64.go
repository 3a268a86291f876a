package nrf24l01

// Configuration for Intel Edison in 64-bit mode with the radio on the
// expansion header.

const (
	spiDevice = "/dev/spidev5.1"
	customCS  = 110
	cePin     = 14
	irqPin    = 15
)
