package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wirebroker/amqp"
)

var declareConfig struct {
	Durable    bool
	AutoDelete bool
	Exclusive  bool
}

var declareCmd = &cobra.Command{
	Use:   "declare <queue>",
	Short: "Declare a queue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		conn, ch, err := dialChannel(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer conn.Close(ctx)

		res, err := ch.QueueDeclare(ctx, amqp.QueueDeclareArgs{
			Queue:      args[0],
			Durable:    declareConfig.Durable,
			AutoDelete: declareConfig.AutoDelete,
			Exclusive:  declareConfig.Exclusive,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("queue %q declared (messages=%d consumers=%d)\n", res.Queue, res.MessageCount, res.ConsumerCount)
	},
	Example: "# amqpctl declare orders --durable",
}

func init() {
	declareCmd.Flags().BoolVar(&declareConfig.Durable, "durable", false, "Survive broker restarts")
	declareCmd.Flags().BoolVar(&declareConfig.AutoDelete, "auto-delete", false, "Delete once the last consumer unsubscribes")
	declareCmd.Flags().BoolVar(&declareConfig.Exclusive, "exclusive", false, "Restrict to this connection")
	rootCmd.AddCommand(declareCmd)
}
