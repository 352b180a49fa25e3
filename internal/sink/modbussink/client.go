// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package modbussink

import (
	"errors"
	"sync"
	"time"

	"github.com/GermanBionicSystems/powermon/common"
	"github.com/goburrow/modbus"
)

// TCPClient is a single Modbus TCP connection.
//
// Requests are serialized because the unit id is set on the shared handler.
type TCPClient struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// Dial connects to endpoint, a host:port.
func Dial(endpoint string, timeout time.Duration) (*TCPClient, error) {
	if endpoint == "" {
		return nil, errors.New("modbussink: endpoint required")
	}
	h := modbus.NewTCPClientHandler(endpoint)
	h.Timeout = timeout
	if err := h.Connect(); err != nil {
		return nil, err
	}
	return &TCPClient{handler: h, client: modbus.NewClient(h)}, nil
}

// WriteRegisters implements RegisterWriter with function code 16.
func (c *TCPClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler.SlaveId = unitID
	_, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), common.RegistersBytes(regs))
	return err
}

// Close implements RegisterWriter.
func (c *TCPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}
