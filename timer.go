package nrf24l01

import "time"

// MillisecondTimer provides the monotonic time base for the driver and
// the slot protocol.  ReadMillis wraps; consumers must take differences
// rather than compare absolute values, except for the driver's one-time
// power-on-reset check, which relies on the counter starting near zero.
type MillisecondTimer interface {
	ReadMillis() uint32
	WaitMicros(us uint32)
	WaitMillis(ms uint32)
}

// SystemTimer is a MillisecondTimer backed by the Go monotonic clock,
// counting from the moment it was created.
type SystemTimer struct {
	epoch time.Time
}

// NewSystemTimer returns a timer whose millisecond counter starts at zero.
func NewSystemTimer() *SystemTimer {
	return &SystemTimer{epoch: time.Now()}
}

// ReadMillis returns milliseconds since the timer was created.
func (t *SystemTimer) ReadMillis() uint32 {
	return uint32(time.Since(t.epoch) / time.Millisecond)
}

func (t *SystemTimer) WaitMicros(us uint32) {
	d := time.Duration(us) * time.Microsecond
	for start := time.Now(); time.Since(start) < d; {
	}
}

func (t *SystemTimer) WaitMillis(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
