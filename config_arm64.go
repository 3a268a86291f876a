package nrf24l01

// Configuration for Raspberry Pi with the radio on SPI0 CE0.

const (
	spiDevice = "/dev/spidev0.0"
	customCS  = 0
	cePin     = 25
	irqPin    = 24
)
