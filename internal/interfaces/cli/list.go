package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apppurchasing "github.com/erp/purchasing/internal/application/purchasing"
	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
)

type listOutput struct {
	Rows       []purchasing.PurchaseOrder `json:"rows"`
	TotalCount int                        `json:"totalCount"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"pageSize"`
	TotalPages int                        `json:"totalPages"`
	Range      shared.DisplayRange        `json:"range"`
}

func newListCmd(opts *globalOptions) *cobra.Command {
	var (
		search       string
		status       string
		from         string
		to           string
		page         int
		pageSize     int
		sortField    string
		desc         bool
		clientPaging bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List purchase orders",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()

			if status != "" && !strings.EqualFold(status, purchasing.StatusAll) {
				parsed, err := purchasing.ParseStatus(status)
				if err != nil {
					return shared.NewValidationError(shared.Violation{Field: "status", Code: "oneof", Message: err.Error()})
				}
				status = parsed.String()
			} else {
				status = purchasing.StatusAll
			}

			size := s.cfg.List.PageSize
			if pageSize > 0 {
				size = pageSize
			}
			ctrl := apppurchasing.NewListController(s.gateway, apppurchasing.ListControllerConfig{
				Debounce:     s.cfg.List.Debounce,
				PageSize:     size,
				ClientPaging: clientPaging || s.cfg.List.ClientPaging(),
				Logger:       s.log,
			})
			defer ctrl.Close()

			direction := purchasing.SortAsc
			if desc {
				direction = purchasing.SortDesc
			}
			ctrl.SetFilter(purchasing.FilterPatch{
				Search:        &search,
				Status:        &status,
				StartDate:     &from,
				EndDate:       &to,
				SortField:     &sortField,
				SortDirection: &direction,
			})
			if page > 1 {
				ctrl.SetPage(page)
			} else {
				ctrl.Refresh()
			}
			ctrl.Wait()

			state := ctrl.State()
			if state.LastError != nil {
				return fmt.Errorf("list purchase orders: %w", state.LastError)
			}
			filter := ctrl.Filter()

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), listOutput{
					Rows:       state.Rows,
					TotalCount: state.TotalCount,
					Page:       filter.Page,
					PageSize:   filter.PageSize,
					TotalPages: ctrl.TotalPages(),
					Range:      ctrl.DisplayRange(),
				})
			}
			renderOrderList(cmd.OutOrStdout(), state, filter, s.names(cmd.Context()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "free-text search")
	cmd.Flags().StringVar(&status, "status", purchasing.StatusAll, "Draft, Approved, Received or All")
	cmd.Flags().StringVar(&from, "from", "", "earliest order date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "latest order date (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (default list.page_size)")
	cmd.Flags().StringVar(&sortField, "sort", "", "sort field, e.g. orderDate or grandTotal")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&clientPaging, "client-paging", false, "fetch the full filtered set and page locally")
	return cmd
}
