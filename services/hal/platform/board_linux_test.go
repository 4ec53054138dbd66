//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/spi"
)

type recordConn struct {
	w [][]byte
	// reply is copied into every read buffer.
	reply []byte
}

func (c *recordConn) String() string               { return "record" }
func (c *recordConn) Duplex() conn.Duplex          { return conn.Full }
func (c *recordConn) TxPackets([]spi.Packet) error { return nil }

func (c *recordConn) Tx(w, r []byte) error {
	if len(w) != len(r) {
		panic("periph requires equal lengths")
	}
	c.w = append(c.w, append([]byte(nil), w...))
	copy(r, c.reply)
	return nil
}

func TestPeriphSPIPadsHalfDuplex(t *testing.T) {
	rc := &recordConn{reply: []byte{0xAB, 0xCD}}
	s := &periphSPI{c: rc}

	require.NoError(t, s.Tx([]byte{0x01}, nil))
	r := make([]byte, 2)
	require.NoError(t, s.Tx(nil, r))
	assert.Equal(t, []byte{0xAB, 0xCD}, r)

	b, err := s.Transfer(0x80)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), b)

	assert.Equal(t, [][]byte{{0x01}, {0x00, 0x00}, {0x80}}, rc.w)
	assert.NoError(t, s.Tx(nil, nil))
}
