package nrf24l01

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the persisted link configuration.  An external collaborator
// owns the storage; the manager only consumes the struct.
type Config struct {
	Ptx                       bool     `json:"ptx"`
	Ids                       []uint32 `json:"ids"`
	AddressLength             int      `json:"address_length"`
	DataRate                  int      `json:"data_rate"`
	OutputPower               int      `json:"output_power"`
	EnableCRC                 bool     `json:"enable_crc"`
	CRCLength                 int      `json:"crc_length"`
	AutoRetransmitCount       int      `json:"auto_retransmit_count"`
	AutoRetransmitDelayMicros int      `json:"auto_retransmit_delay_us"`
	AutomaticAcknowledgment   bool     `json:"automatic_acknowledgment"`
	DynamicPayloadLength      bool     `json:"dynamic_payload_length"`
	InitialChannel            uint8    `json:"initial_channel"`
	PrintChannels             bool     `json:"print_channels"`
	TransmitTimeoutMs         uint32   `json:"transmit_timeout_ms"`
}

// DefaultConfig returns the stock configuration: a transmitter
// addressing one remote, with Enhanced Shockburst acknowledgment and
// ACK payloads enabled.
func DefaultConfig() Config {
	return Config{
		Ptx:                       true,
		Ids:                       []uint32{0x30251023, 0},
		AddressLength:             5,
		DataRate:                  1000000,
		OutputPower:               0,
		EnableCRC:                 true,
		CRCLength:                 2,
		AutoRetransmitCount:       0,
		AutoRetransmitDelayMicros: 1000,
		AutomaticAcknowledgment:   true,
		DynamicPayloadLength:      true,
		InitialChannel:            0,
		PrintChannels:             false,
		TransmitTimeoutMs:         1000,
	}
}

// id returns the link identifier for remote i, zero when absent.
func (c *Config) id(i int) uint64 {
	if i >= len(c.Ids) {
		return 0
	}
	return uint64(c.Ids[i])
}

// radioOptions maps the configuration onto the driver options for the
// primary remote.
func (c *Config) radioOptions() Options {
	return Options{
		Ptx:                       c.Ptx,
		Id:                        c.id(0),
		AddressLength:             c.AddressLength,
		DataRate:                  c.DataRate,
		OutputPower:               c.OutputPower,
		EnableCRC:                 c.EnableCRC,
		CRCLength:                 c.CRCLength,
		AutoRetransmitCount:       c.AutoRetransmitCount,
		AutoRetransmitDelayMicros: c.AutoRetransmitDelayMicros,
		AutomaticAcknowledgment:   c.AutomaticAcknowledgment,
		DynamicPayloadLength:      c.DynamicPayloadLength,
		InitialChannel:            c.InitialChannel,
	}
}

// LoadConfig reads a configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	c := DefaultConfig()
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return c, nil
}

// SaveConfig writes a configuration file.
func SaveConfig(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
