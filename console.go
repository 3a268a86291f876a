package nrf24l01

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Console is the human-readable command surface over a manager.  It
// accepts one command per line and reports received slots and channel
// hops as text lines on the sink.
//
// Commands:
//
//	tx <slot> <hexdata>            write a slot for the primary remote
//	tx2 <remote> <slot> <hexdata>  write a slot for a specific remote
//	pri <slot> <mask>              set a slot's priority mask (hex)
//	pri2 <remote> <slot> <mask>
//	stat                           dump channel, errors, radio status
type Console struct {
	manager *Manager
	out     io.Writer
}

// NewConsole wires a console to a manager and registers its slot and
// channel callbacks.
func NewConsole(manager *Manager, out io.Writer) *Console {
	c := &Console{manager: manager, out: out}
	manager.OnSlots = c.emitSlots
	manager.OnChannel = c.emitChannel
	return c
}

// ProcessLine executes one command line.
func (c *Console) ProcessLine(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "tx":
		c.commandTx(0, fields[1:])
	case "tx2":
		c.commandTx2(fields[1:])
	case "pri":
		c.commandPri(0, fields[1:])
	case "pri2":
		c.commandPri2(fields[1:])
	case "stat":
		c.commandStat()
	default:
		c.emit("ERR unknown command\r\n")
	}
}

func (c *Console) commandTx(remote int, args []string) {
	if len(args) < 2 {
		c.emit("ERR missing arguments\r\n")
		return
	}
	slot, err := strconv.ParseInt(args[0], 0, 32)
	if err != nil {
		c.emit("ERR invalid slot\r\n")
		return
	}
	if len(args[1])%2 != 0 {
		c.emit("ERR data invalid length\r\n")
		return
	}
	data, err := hex.DecodeString(args[1])
	if err != nil {
		c.emit("ERR invalid data\r\n")
		return
	}
	if len(data) > maxSublayerData {
		c.emit("ERR data too long\r\n")
		return
	}
	c.manager.WriteTxSlot(remote, int(slot), data)
	c.emit("OK\r\n")
}

func (c *Console) commandTx2(args []string) {
	if len(args) < 1 {
		c.emit("ERR missing arguments\r\n")
		return
	}
	remote, err := strconv.ParseInt(args[0], 0, 32)
	if err != nil {
		c.emit("ERR invalid remote\r\n")
		return
	}
	c.commandTx(int(remote), args[1:])
}

func (c *Console) commandPri(remote int, args []string) {
	if len(args) < 2 {
		c.emit("ERR invalid priority\r\n")
		return
	}
	slot, err := strconv.ParseInt(args[0], 0, 32)
	if err != nil {
		c.emit("ERR invalid slot\r\n")
		return
	}
	priority, err := strconv.ParseUint(args[1], 16, 32)
	if err != nil {
		c.emit("ERR invalid priority\r\n")
		return
	}
	c.manager.SetPriority(remote, int(slot), uint32(priority))
	c.emit("OK\r\n")
}

func (c *Console) commandPri2(args []string) {
	if len(args) < 1 {
		c.emit("ERR invalid priority\r\n")
		return
	}
	remote, err := strconv.ParseInt(args[0], 0, 32)
	if err != nil {
		c.emit("ERR invalid remote\r\n")
		return
	}
	c.commandPri(int(remote), args[1:])
}

func (c *Console) commandStat() {
	status := c.manager.RadioStatus()
	c.emit(fmt.Sprintf("chan %d err %X status %02X maxrt %d\r\n",
		c.manager.Channel(), c.manager.ErrorBits(),
		status.StatusReg, status.RetransmitExceeded))
}

func (c *Console) emitSlots(remote int, changed uint32) {
	var b strings.Builder
	b.WriteString("rcv")
	if remote > 0 {
		fmt.Fprintf(&b, "2 %d", remote)
	}
	for index := 0; index < NumSlots; index++ {
		if changed&(0x3<<(uint(index)*2)) == 0 {
			continue
		}
		slot := c.manager.RxSlot(remote, index)
		fmt.Fprintf(&b, " %d:%s", index,
			strings.ToUpper(hex.EncodeToString(slot.Data[:slot.Size])))
	}
	if errs := c.manager.ErrorBits(); errs != 0 {
		fmt.Fprintf(&b, " E%X", errs)
	}
	b.WriteString("\r\n")
	c.emit(b.String())
}

func (c *Console) emitChannel(channel uint8) {
	c.emit(fmt.Sprintf("chan %d\r\n", channel))
}

func (c *Console) emit(s string) {
	_, _ = io.WriteString(c.out, s)
}
