package transport

import "time"

// Config is the transport.* flag group.
type Config struct {
	PacketSize    int           `help:"USB packet size in bytes, envelope included; 0 uses the endpoint's max packet size" default:"0" env:"DZPRINT_TRANSPORT_PACKET_SIZE"`
	FlushInterval time.Duration `help:"Interval after which a partially filled packet is sent" default:"100ms" env:"DZPRINT_TRANSPORT_FLUSH_INTERVAL"`
	QueueSize     int           `help:"Submissions buffered before callers block" default:"64" env:"DZPRINT_TRANSPORT_QUEUE_SIZE"`
	WriteTimeout  time.Duration `help:"Timeout of a single USB write" default:"1s" env:"DZPRINT_TRANSPORT_WRITE_TIMEOUT"`
	ReadTimeout   time.Duration `help:"Timeout of a single USB read; timeouts are retried" default:"100ms" env:"DZPRINT_TRANSPORT_READ_TIMEOUT"`
}

// DefaultPacketSize is used when neither the config nor the endpoint
// provide a packet size.
const DefaultPacketSize = 64

func (c Config) withDefaults() Config {
	if c.PacketSize <= 0 {
		c.PacketSize = DefaultPacketSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 100 * time.Millisecond
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 100 * time.Millisecond
	}
	return c
}
