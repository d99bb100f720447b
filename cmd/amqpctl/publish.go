package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wirebroker/amqp"
)

var publishConfig struct {
	Exchange    string
	RoutingKey  string
	ContentType string
	Mandatory   bool
}

var publishCmd = &cobra.Command{
	Use:   "publish <body>",
	Short: "Publish a message",
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

		err = ch.Publish(ctx, amqp.PublishArgs{
			Exchange:   publishConfig.Exchange,
			RoutingKey: publishConfig.RoutingKey,
			Mandatory:  publishConfig.Mandatory,
		}, amqp.Properties{ContentType: publishConfig.ContentType}, []byte(args[0]))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("published")
	},
	Example: "# amqpctl publish 'hello' --routing-key orders",
}

func init() {
	publishCmd.Flags().StringVar(&publishConfig.Exchange, "exchange", "", "Exchange to publish to (default exchange if empty)")
	publishCmd.Flags().StringVar(&publishConfig.RoutingKey, "routing-key", "", "Routing key")
	publishCmd.Flags().StringVar(&publishConfig.ContentType, "content-type", "text/plain", "Message content type")
	publishCmd.Flags().BoolVar(&publishConfig.Mandatory, "mandatory", false, "Return the message if it can't be routed")
	rootCmd.AddCommand(publishCmd)
}
