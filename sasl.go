package amqp

import (
	"bytes"
	"fmt"

	"github.com/wirebroker/amqp/internal/shared"
)

// PlainAuth returns the SASL PLAIN mechanism for identity/username/password.
// identity is almost always empty; RabbitMQ ignores it.
func PlainAuth(identity, username, password string) shared.Authentication {
	return &shared.PlainAuth{Identity: identity, Username: username, Password: password}
}

// AMQPlainAuth returns the SASL AMQPLAIN mechanism, RabbitMQ's field-table
// encoded alternative to PLAIN.
func AMQPlainAuth(username, password string) shared.Authentication {
	return &shared.AMQPlainAuth{Username: username, Password: password}
}

// chooseMechanism reports an error unless serverOffered (a space-separated
// list per Connection.Start) includes auth's mechanism.
func chooseMechanism(serverOffered []byte, auth shared.Authentication) error {
	for _, m := range bytes.Fields(serverOffered) {
		if string(m) == auth.Mechanism() {
			return nil
		}
	}
	return fmt.Errorf("amqp: server does not offer SASL mechanism %q (offered: %s)", auth.Mechanism(), serverOffered)
}
