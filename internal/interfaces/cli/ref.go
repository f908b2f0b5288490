package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// Reference data kinds accepted by the ref command
const (
	refSuppliers  = "suppliers"
	refWarehouses = "warehouses"
	refProducts   = "products"
	refVatRates   = "vat-rates"
)

func newRefCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "ref <suppliers|warehouses|products|vat-rates>",
		Short:     "Show reference data",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{refSuppliers, refWarehouses, refProducts, refVatRates},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if args[0] == refVatRates {
				rates := s.refs.VatRates(ctx)
				if opts.jsonOut {
					return writeJSON(out, rates)
				}
				for _, r := range rates {
					fmt.Fprintf(out, "%d%%\n", r)
				}
				return nil
			}

			data, err := s.refs.Load(ctx)
			if err != nil {
				return err
			}

			var (
				payload any
				cols    []column
				rows    [][]string
			)
			switch args[0] {
			case refSuppliers:
				payload = data.Suppliers()
				cols = []column{{title: "ID", right: true}, {title: "NAME"}, {title: "EMAIL"}, {title: "PHONE"}}
				for _, v := range data.Suppliers() {
					rows = append(rows, []string{strconv.FormatInt(v.ID, 10), v.Name, v.Email, v.Phone})
				}
			case refWarehouses:
				payload = data.Warehouses()
				cols = []column{{title: "ID", right: true}, {title: "NAME"}, {title: "ADDRESS"}}
				for _, v := range data.Warehouses() {
					rows = append(rows, []string{strconv.FormatInt(v.ID, 10), v.Name, v.Address})
				}
			case refProducts:
				payload = data.Products()
				cols = []column{{title: "ID", right: true}, {title: "SKU"}, {title: "NAME"}, {title: "CATEGORY"}}
				for _, v := range data.Products() {
					rows = append(rows, []string{strconv.FormatInt(v.ID, 10), v.SKU, v.Name, v.Category})
				}
			}

			if opts.jsonOut {
				return writeJSON(out, payload)
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, dimStyle.Render("Nothing to show."))
				return nil
			}
			renderTable(out, cols, rows)
			return nil
		},
	}
}
