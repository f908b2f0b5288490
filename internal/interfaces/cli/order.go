package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	apppurchasing "github.com/erp/purchasing/internal/application/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/domain/shared/valueobject"
)

func newGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one purchase order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()

			order, err := s.gateway.GetPurchaseOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), order)
			}
			renderOrder(cmd.OutOrStdout(), *order, s.names(cmd.Context()))
			return nil
		},
	}
}

// orderFlags are the header and line flags shared by create and edit
type orderFlags struct {
	poNumber    string
	supplierID  int64
	warehouseID int64
	address     string
	vatRate     int64
	orderDate   string
	memo        string
	items       []string
	dryRun      bool
}

func (f *orderFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.poNumber, "po-number", "", "PO number (generated on create when empty)")
	fs.Int64Var(&f.supplierID, "supplier", 0, "supplier id")
	fs.Int64Var(&f.warehouseID, "warehouse", 0, "warehouse id")
	fs.StringVar(&f.address, "address", "", "shipping address")
	fs.Int64Var(&f.vatRate, "vat", 0, "VAT rate: 5, 10, 15 or 20")
	fs.StringVar(&f.orderDate, "date", "", "order date (YYYY-MM-DD)")
	fs.StringVar(&f.memo, "memo", "", "free-text memo")
	fs.StringArrayVar(&f.items, "item", nil, "line item as productId:quantity:unitPrice, repeatable")
	fs.BoolVar(&f.dryRun, "dry-run", false, "validate and show the draft without saving")
}

// headerPatch carries only the flags that were set on the command line
func (f *orderFlags) headerPatch(fs *pflag.FlagSet) apppurchasing.HeaderPatch {
	var patch apppurchasing.HeaderPatch
	if fs.Changed("po-number") {
		patch.PONumber = &f.poNumber
	}
	if fs.Changed("supplier") {
		patch.SupplierID = &f.supplierID
	}
	if fs.Changed("warehouse") {
		patch.WarehouseID = &f.warehouseID
	}
	if fs.Changed("address") {
		patch.ShippingAddress = &f.address
	}
	if fs.Changed("vat") {
		patch.VatRate = &f.vatRate
	}
	if fs.Changed("date") {
		patch.OrderDate = &f.orderDate
	}
	if fs.Changed("memo") {
		patch.Memo = &f.memo
	}
	return patch
}

// applyItems replaces the builder's lines with the --item values
func (f *orderFlags) applyItems(b *apppurchasing.OrderBuilder) error {
	lines := make([]apppurchasing.ItemPatch, 0, len(f.items))
	var violations []shared.Violation
	for i, raw := range f.items {
		line, err := parseItem(raw)
		if err != nil {
			violations = append(violations, shared.Violation{
				Field:   fmt.Sprintf("items[%d]", i),
				Code:    "format",
				Message: err.Error(),
			})
			continue
		}
		lines = append(lines, line)
	}
	if len(violations) > 0 {
		return shared.NewValidationError(violations...)
	}

	for len(b.Items()) > 0 {
		if err := b.RemoveItem(len(b.Items()) - 1); err != nil {
			return err
		}
	}
	for _, line := range lines {
		if err := b.UpdateItem(b.AddItem(), line); err != nil {
			return err
		}
	}
	return nil
}

func parseItem(raw string) (apppurchasing.ItemPatch, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return apppurchasing.ItemPatch{}, fmt.Errorf("expected productId:quantity:unitPrice, got %q", raw)
	}
	productID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return apppurchasing.ItemPatch{}, fmt.Errorf("invalid product id %q", parts[0])
	}
	quantity, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return apppurchasing.ItemPatch{}, fmt.Errorf("invalid quantity %q", parts[1])
	}
	price, err := valueobject.NewAmountFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return apppurchasing.ItemPatch{}, fmt.Errorf("invalid unit price %q", parts[2])
	}
	return apppurchasing.ItemPatch{ProductID: &productID, Quantity: &quantity, UnitPrice: &price}, nil
}

func newCreateCmd(opts *globalOptions) *cobra.Command {
	flags := &orderFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a purchase order",
		Example: `  poctl create --supplier 1 --warehouse 2 --address "1 Dock Road" \
    --item 10:2:10.00 --item 11:1:5.50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()

			b := apppurchasing.NewOrderBuilder(s.gateway, apppurchasing.OrderBuilderConfig{
				DefaultVatRate: s.cfg.Order.DefaultVatRate,
				Logger:         s.log,
			})
			b.UpdateHeader(flags.headerPatch(cmd.Flags()))
			if err := flags.applyItems(b); err != nil {
				return err
			}
			return submit(cmd, opts, s, b, flags.dryRun, "Created")
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newEditCmd(opts *globalOptions) *cobra.Command {
	flags := &orderFlags{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a purchase order",
		Long:  "Edit header fields of an existing purchase order. Passing --item replaces all of its line items.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()

			b := apppurchasing.NewOrderBuilder(s.gateway, apppurchasing.OrderBuilderConfig{
				DefaultVatRate: s.cfg.Order.DefaultVatRate,
				Logger:         s.log,
			})
			if err := b.LoadForEdit(cmd.Context(), id); err != nil {
				return err
			}
			b.UpdateHeader(flags.headerPatch(cmd.Flags()))
			if cmd.Flags().Changed("item") {
				if err := flags.applyItems(b); err != nil {
					return err
				}
			}
			return submit(cmd, opts, s, b, flags.dryRun, "Updated")
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// submit validates the draft, saves it unless dryRun and prints the result
func submit(cmd *cobra.Command, opts *globalOptions, s *session, b *apppurchasing.OrderBuilder, dryRun bool, verb string) error {
	out := cmd.OutOrStdout()
	if dryRun {
		if violations := b.Validate(); len(violations) > 0 {
			return shared.NewValidationError(violations...)
		}
		draft := b.Draft()
		if opts.jsonOut {
			return writeJSON(out, draft)
		}
		renderOrder(out, draft, s.names(cmd.Context()))
		return nil
	}

	saved, err := b.Submit(cmd.Context())
	if err != nil {
		return err
	}
	if opts.jsonOut {
		return writeJSON(out, saved)
	}
	fmt.Fprintf(out, "%s %s (id %d)\n", passStyle.Render(verb), saved.PONumber, saved.ID)
	renderTotals(out, b.Totals(), b.Draft().VatRate)
	return nil
}

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a purchase order",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()

			ctrl := apppurchasing.NewListController(s.gateway, apppurchasing.ListControllerConfig{
				PageSize:     s.cfg.List.PageSize,
				ClientPaging: s.cfg.List.ClientPaging(),
				Logger:       s.log,
			})
			defer ctrl.Close()

			if err := ctrl.Delete(cmd.Context(), id); err != nil {
				return err
			}
			ctrl.Wait()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s purchase order %d\n", passStyle.Render("Deleted"), id)
			if state := ctrl.State(); state.LastError == nil {
				fmt.Fprintf(out, "%d purchase orders remaining\n", state.TotalCount)
			}
			return nil
		},
	}
}

func parseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, shared.NewValidationError(shared.Violation{
			Field:   "id",
			Code:    "format",
			Message: fmt.Sprintf("invalid purchase order id %q", raw),
		})
	}
	return id, nil
}
