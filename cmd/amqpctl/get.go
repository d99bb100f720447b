package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var getConfig struct {
	AutoAck bool
}

var getCmd = &cobra.Command{
	Use:   "get <queue>",
	Short: "Fetch a single message from a queue",
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

		msg, ok, err := ch.Get(ctx, args[0], getConfig.AutoAck)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("(queue empty)")
			return
		}
		fmt.Printf("delivery_tag=%d redelivered=%v body=%q\n", msg.DeliveryTag, msg.Redelivered, msg.Body)
		if !getConfig.AutoAck {
			if err := msg.Ack(false); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	},
	Example: "# amqpctl get orders",
}

func init() {
	getCmd.Flags().BoolVar(&getConfig.AutoAck, "auto-ack", false, "Acknowledge automatically on delivery")
	rootCmd.AddCommand(getCmd)
}
