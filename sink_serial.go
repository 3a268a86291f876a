package nrf24l01

import (
	"github.com/ecc1/serial"
)

// SerialSink adapts a serial port to the console's io.Writer sink, for
// deployments where the slot console rides a UART instead of stdio.
type SerialSink struct {
	port *serial.Port
}

// OpenSerialSink opens a serial port as a console sink.
func OpenSerialSink(device string, speed int) (*SerialSink, error) {
	port, err := serial.Open(device, speed)
	if err != nil {
		return nil, err
	}
	return &SerialSink{port: port}, nil
}

func (s *SerialSink) Write(p []byte) (int, error) {
	if err := s.port.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ReadAvailable returns any bytes waiting on the port, for feeding the
// console's command input without blocking the poll loop.
func (s *SerialSink) ReadAvailable(buf []byte) (int, error) {
	return s.port.ReadAvailable(buf)
}
