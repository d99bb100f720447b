package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wirebroker/amqp"
)

// dialChannel dials url and opens one channel on it, the shape every
// subcommand needs before doing its actual work.
func dialChannel(ctx context.Context) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel(ctx)
	if err != nil {
		conn.Close(ctx)
		return nil, nil, err
	}
	return conn, ch, nil
}

// interruptContext returns a context canceled on SIGINT/SIGTERM, for
// subcommands that run until interrupted (consume).
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
