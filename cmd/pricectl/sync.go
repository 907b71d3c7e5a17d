package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/erp/pricesync/internal/fieldsync"
	"github.com/spf13/cobra"
)

func newSyncCmd(opts *globalOptions) *cobra.Command {
	var cancelSuperseded bool

	cmd := &cobra.Command{
		Use:   "sync <product-id>...",
		Short: "Select products in turn on an in-memory form and print the price field",
		Long: `sync builds a form with an id_product selector and an id_price input,
binds the price sync once the form is ready, then selects each product id in
order without waiting in between. Every lookup outcome is printed as it
finishes, followed by the final value of the price field.

Without --cancel-superseded, overlapping lookups race and the last response
to arrive wins.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			log := opts.logger()
			defer func() {
				_ = log.Sync()
			}()

			out := cmd.OutOrStdout()
			printer := &outcomePrinter{w: out}

			syncOpts := []fieldsync.Option{
				fieldsync.WithOutcomeHook(printer.print),
				fieldsync.WithLogger(log),
			}
			if cancelSuperseded {
				syncOpts = append(syncOpts, fieldsync.WithCancelSuperseded())
			}

			price, err := runSync(client, args, syncOpts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s = %q\n", fieldsync.PriceElementID, price)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cancelSuperseded, "cancel-superseded", false,
		"Cancel an in-flight lookup when a newer selection is made")
	return cmd
}

// runSync selects each id on a freshly bound form and returns the price
// field once every lookup has finished.
func runSync(lookup fieldsync.Lookup, ids []string, opts ...fieldsync.Option) (string, error) {
	form := fieldsync.NewForm()
	product := form.AddSelect(fieldsync.ProductElementID, ids...)
	price := form.AddInput(fieldsync.PriceElementID, "")

	ready := fieldsync.NewReadySignal()
	binding := fieldsync.BindOnReady(ready, form, lookup, opts...)
	ready.Fire()
	<-binding.Bound()

	h := binding.Handler()
	if h == nil {
		return "", fmt.Errorf("price sync could not be bound to the form")
	}

	for _, id := range ids {
		if err := product.Select(id); err != nil {
			return "", fmt.Errorf("select %q: %w", id, err)
		}
	}
	h.Wait()

	return price.Value(), nil
}

type outcomePrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *outcomePrinter) print(o fieldsync.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case o.Applied:
		fmt.Fprintf(p.w, "product %s: price %s applied\n", o.ProductID, o.Quote.Price)
	case o.Superseded:
		fmt.Fprintf(p.w, "product %s: superseded\n", o.ProductID)
	case o.Err != nil:
		fmt.Fprintf(p.w, "product %s: lookup failed: %v\n", o.ProductID, o.Err)
	default:
		fmt.Fprintf(p.w, "product %s: not applied\n", o.ProductID)
	}
}
