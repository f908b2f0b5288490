package gateway

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
)

// Query parameter names of the list endpoint
const (
	ParamSearch    = "q"
	ParamStatus    = "status"
	ParamDateFrom  = "orderDate_gte"
	ParamDateTo    = "orderDate_lte"
	ParamPage      = "_page"
	ParamLimit     = "_limit"
	ParamSort      = "_sort"
	ParamOrder     = "_order"
	TotalCountHead = "X-Total-Count"
)

// BuildListParams maps a list query onto json-server query parameters.
// Blank search, "All" status and empty dates are omitted. Paging parameters
// are omitted for unpaged queries.
func BuildListParams(query purchasing.ListQuery) (url.Values, error) {
	f := query.Filter.Clamped()
	params := url.Values{}

	if search := f.TrimmedSearch(); search != "" {
		params.Set(ParamSearch, search)
	}
	if status := f.StatusFilter(); status != "" {
		params.Set(ParamStatus, status)
	}

	var violations []shared.Violation
	from, err := purchasing.NormalizeDate(f.StartDate)
	if err != nil {
		violations = append(violations, shared.Violation{Field: "startDate", Code: "date", Message: err.Error()})
	}
	to, err := purchasing.NormalizeDate(f.EndDate)
	if err != nil {
		violations = append(violations, shared.Violation{Field: "endDate", Code: "date", Message: err.Error()})
	}
	if len(violations) > 0 {
		return nil, shared.NewValidationError(violations...)
	}
	if from != "" {
		params.Set(ParamDateFrom, from)
	}
	if to != "" {
		params.Set(ParamDateTo, to)
	}

	if !query.Unpaged {
		params.Set(ParamPage, strconv.Itoa(f.Page))
		params.Set(ParamLimit, strconv.Itoa(f.PageSize))
	}

	if field := strings.TrimSpace(f.SortField); field != "" {
		params.Set(ParamSort, field)
		direction := purchasing.SortAsc
		if strings.EqualFold(string(f.SortDirection), string(purchasing.SortDesc)) {
			direction = purchasing.SortDesc
		}
		params.Set(ParamOrder, string(direction))
	}
	return params, nil
}
