// Package nrf24l01 drives an SPI-attached nRF24L01+ transceiver and
// runs a slot-multiplexed, frequency-hopping link on top of it.
package nrf24l01

import (
	"fmt"
	"log"

	"github.com/ecc1/gpio"
	"github.com/ecc1/spi"
)

const (
	verbose    = false
	verboseSPI = false
)

func init() {
	if verbose || verboseSPI {
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.LUTC)
	}
}

// Conn is the SPI connection to the radio.  The first byte of every
// transfer is a command and is overwritten in place with the chip's
// STATUS register.  *spi.Device satisfies it.
type Conn interface {
	Transfer([]byte) error
}

// OutputPin drives the radio's CE line.  gpio.OutputPin satisfies it.
type OutputPin interface {
	Write(bool) error
}

// InputPin reads the radio's IRQ line.  Read must return true while
// the interrupt is asserted.  gpio.InputPin satisfies it.
type InputPin interface {
	Read() (bool, error)
}

// Open opens the radio on the platform's SPI device and GPIO pins.
func Open(options Options) *Radio {
	const spiSpeed = 4000000 // Hz

	device, err := spi.Open(spiDevice, spiSpeed, customCS)
	if err != nil {
		return radioWithError(err)
	}
	ce, err := gpio.Output(cePin, false, false)
	if err != nil {
		_ = device.Close()
		return radioWithError(err)
	}
	irq, err := gpio.Input(irqPin, "none", true)
	if err != nil {
		_ = device.Close()
		return radioWithError(err)
	}
	r := NewRadio(device, ce, irq, NewSystemTimer(), options)
	r.device = device
	return r
}

// Close closes the radio device.
func (r *Radio) Close() {
	if r.device == nil {
		return
	}
	r.err = r.device.Close()
}

// Name returns the radio's name.
func (r *Radio) Name() string {
	return "nRF24L01+"
}

// Device returns the pathname of the radio's device.
func (r *Radio) Device() string {
	return spiDevice
}

// command performs one SPI transaction: the command byte, then
// max(len(dataIn), len(dataOut)) data bytes.  Bytes clocked out beyond
// dataIn are zero; bytes clocked in are stored into dataOut.  The
// returned byte is the STATUS register, which the chip shifts out
// while the command byte shifts in.
func (r *Radio) command(cmd Command, dataIn []byte, dataOut []byte) byte {
	if r.err != nil {
		return 0
	}
	n := len(dataIn)
	if len(dataOut) > n {
		n = len(dataOut)
	}
	buf := r.spiBuf[:1+n]
	buf[0] = byte(cmd)
	for i := 0; i < n; i++ {
		if i < len(dataIn) {
			buf[1+i] = dataIn[i]
		} else {
			buf[1+i] = 0
		}
	}
	r.err = r.conn.Transfer(buf)
	copy(dataOut, buf[1:])
	if verboseSPI {
		log.Printf("command %02X -> status %02X data % X", cmd, buf[0], buf[1:])
	}
	return buf[0]
}

func (r *Radio) readRegister(addr byte) byte {
	var v [1]byte
	r.command(CmdReadRegister|Command(addr), nil, v[:])
	return v[0]
}

func (r *Radio) readRegisterN(addr byte, data []byte) {
	r.command(CmdReadRegister|Command(addr), nil, data)
}

func (r *Radio) writeRegister(addr byte, value byte) {
	r.command(CmdWriteRegister|Command(addr), []byte{value}, nil)
}

func (r *Radio) writeRegisterN(addr byte, data []byte) {
	r.command(CmdWriteRegister|Command(addr), data, nil)
}

// verifyRegister writes a register and reads it back.  A mismatch
// means the radio is absent or miswired; it latches a fatal error.
func (r *Radio) verifyRegister(addr byte, data ...byte) {
	if r.err != nil {
		return
	}
	r.writeRegisterN(addr, data)
	readback := make([]byte, len(data))
	r.readRegisterN(addr, readback)
	for i := range data {
		if readback[i] != data[i] {
			r.err = fmt.Errorf("register %#02X read back % X, want % X", addr, readback, data)
			return
		}
	}
}
