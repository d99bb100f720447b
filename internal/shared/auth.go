// Package shared holds small types needed by both the mux engine and the
// public facades, mirroring the teacher's internal/shared package (referenced
// from sender.go) that exists to avoid import cycles between the top-level
// amqp package and internal/mux.
package shared

import (
	"fmt"

	"github.com/wirebroker/amqp/internal/buffer"
	"github.com/wirebroker/amqp/internal/encoding"
)

// Authentication is a SASL mechanism offered during the Connection.Start/
// StartOk exchange. Grounded on the Authentication interface used by the
// streadway/amqp lineage (other_examples/…chenggangschool-amqp…connection.go.go).
type Authentication interface {
	Mechanism() string
	Response() string
}

// PlainAuth implements the SASL PLAIN mechanism.
type PlainAuth struct {
	Identity string
	Username string
	Password string
}

func (a *PlainAuth) Mechanism() string { return "PLAIN" }

func (a *PlainAuth) Response() string {
	return fmt.Sprintf("%s\000%s\000%s", a.Identity, a.Username, a.Password)
}

// AMQPlainAuth implements the SASL AMQPLAIN mechanism, which encodes the
// credentials as an AMQP field-table instead of a NUL-separated string.
type AMQPlainAuth struct {
	Username string
	Password string
}

func (a *AMQPlainAuth) Mechanism() string { return "AMQPLAIN" }

// Response encodes the credentials as an unframed field-table, the format
// RabbitMQ expects for AMQPLAIN (as opposed to PLAIN's NUL-separated string).
func (a *AMQPlainAuth) Response() string {
	w := buffer.New(nil)
	_ = encoding.WriteFieldValue(w, a.Username)
	user := w.Bytes()
	w2 := buffer.New(nil)
	_ = encoding.WriteFieldValue(w2, a.Password)
	pass := w2.Bytes()

	var out []byte
	out = append(out, byte(len("LOGIN")))
	out = append(out, "LOGIN"...)
	out = append(out, user...)
	out = append(out, byte(len("PASSWORD")))
	out = append(out, "PASSWORD"...)
	out = append(out, pass...)
	return string(out)
}
