package main

import (
	"fmt"

	"github.com/erp/pricesync/internal/fieldsync"
	"github.com/spf13/cobra"
)

func newLookupCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <product-id>",
		Short: "Fetch and print the price of one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}

			quote, err := client.LookupPrice(cmd.Context(), fieldsync.ProductID(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, quote.Price)
			if quote.Quantity != nil {
				fmt.Fprintf(out, "quantity: %d\n", *quote.Quantity)
			}
			return nil
		},
	}
}
