package stack

import (
	"time"

	"github.com/rmja/linkiq/turbo"
	"github.com/rmja/linkiq/wmbus"
)

// Packet is a fully decoded wM-Bus telegram together with the receive
// context it was captured under.
type Packet struct {
	Address    wmbus.Address
	Channel    Channel
	Rate       turbo.CodeRate
	Rssi       int
	Data       []byte
	ReceivedAt time.Duration
}
