package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wirebroker/amqp"
)

var consumeConfig struct {
	AutoAck bool
}

var consumeCmd = &cobra.Command{
	Use:   "consume <queue>",
	Short: "Stream deliveries from a queue until interrupted",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := interruptContext()
		defer cancel()

		conn, ch, err := dialChannel(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer conn.Close(ctx)

		deliveries, err := ch.Consume(ctx, amqp.ConsumeArgs{Queue: args[0], AutoAck: consumeConfig.AutoAck})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				fmt.Printf("delivery_tag=%d routing_key=%s body=%q\n", d.DeliveryTag, d.RoutingKey, d.Body)
				if !consumeConfig.AutoAck {
					_ = d.Ack(false)
				}
			}
		}
	},
	Example: "# amqpctl consume orders",
}

func init() {
	consumeCmd.Flags().BoolVar(&consumeConfig.AutoAck, "auto-ack", false, "Acknowledge automatically on delivery")
	rootCmd.AddCommand(consumeCmd)
}
