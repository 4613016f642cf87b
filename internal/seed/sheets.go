package seed

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finboard/internal/core"
	"finboard/internal/log"
)

// SheetRanges names the A1 range holding each dataset section. Every range
// starts with a header row; columns are matched by header name.
type SheetRanges struct {
	Balance      string
	Transactions string
	Pots         string
	Budgets      string
	Bills        string
}

func DefaultSheetRanges() SheetRanges {
	return SheetRanges{
		Balance:      "Balance!A:C",
		Transactions: "Transactions!A:D",
		Pots:         "Pots!A:E",
		Budgets:      "Budgets!A:C",
		Bills:        "Bills!A:E",
	}
}

func (r SheetRanges) withDefaults() SheetRanges {
	def := DefaultSheetRanges()
	r.Balance = cmp.Or(strings.TrimSpace(r.Balance), def.Balance)
	r.Transactions = cmp.Or(strings.TrimSpace(r.Transactions), def.Transactions)
	r.Pots = cmp.Or(strings.TrimSpace(r.Pots), def.Pots)
	r.Budgets = cmp.Or(strings.TrimSpace(r.Budgets), def.Budgets)
	r.Bills = cmp.Or(strings.TrimSpace(r.Bills), def.Bills)
	return r
}

func (r SheetRanges) list() []string {
	return []string{r.Balance, r.Transactions, r.Pots, r.Budgets, r.Bills}
}

// SheetsSource reads the seed from a Google spreadsheet with one
// BatchGet call.
type SheetsSource struct {
	svc           *gsheet.Service
	spreadsheetID string
	ranges        SheetRanges
	logger        *slog.Logger
}

// NewSheetsSource authenticates with the service account in
// credentialsFile, or GOOGLE_APPLICATION_CREDENTIALS when it is empty.
func NewSheetsSource(ctx context.Context, spreadsheetID, credentialsFile string, ranges SheetRanges, logger *slog.Logger) (*SheetsSource, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if credentialsFile == "" {
		return nil, errors.New("missing service account credentials (set FINBOARD_SHEETS_CREDENTIALS_FILE or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsSource{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		ranges:        ranges.withDefaults(),
		logger:        log.WithComponent(logger, log.ComponentSeed),
	}, nil
}

// Load fetches every range at once. Rate-limited reads are retried.
func (s *SheetsSource) Load(ctx context.Context) (core.Dataset, error) {
	var resp *gsheet.BatchGetValuesResponse
	err := retry.Do(
		func() error {
			var err error
			resp, err = s.svc.Spreadsheets.Values.BatchGet(s.spreadsheetID).
				Ranges(s.ranges.list()...).
				ValueRenderOption("UNFORMATTED_VALUE").
				DateTimeRenderOption("FORMATTED_STRING").
				Context(ctx).
				Do()
			return err
		},
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
				s.logger.Warn("Rate limited, will retry", log.FieldError, err)
				return true
			}
			return false
		}),
		retry.Attempts(3),
		retry.Delay(10*time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("batch get %s: %w", s.spreadsheetID, err)
	}

	sections := make([][][]interface{}, len(resp.ValueRanges))
	for i, vr := range resp.ValueRanges {
		sections[i] = vr.Values
	}
	d, err := parseSheets(sections)
	if err != nil {
		return core.Dataset{}, err
	}
	s.logger.InfoContext(ctx, "Seed loaded from Google Sheets",
		log.FieldTransactions, len(d.Transactions),
		log.FieldPots, len(d.Pots),
		log.FieldBills, len(d.Bills))
	return d, nil
}

// parseSheets converts the value matrices of the balance, transactions,
// pots, budgets and bills ranges, in that order, into a dataset.
func parseSheets(sections [][][]interface{}) (core.Dataset, error) {
	if len(sections) != 5 {
		return core.Dataset{}, fmt.Errorf("%w: expected 5 ranges, got %d", core.ErrInvalidSeed, len(sections))
	}
	var (
		d    core.Dataset
		errs []error
	)

	balance, err := newTable("balance", sections[0], "current", "income", "expenses")
	if err != nil {
		errs = append(errs, err)
	} else if len(balance.rows) == 0 {
		errs = append(errs, errors.New("balance: no data row"))
	} else {
		row := balance.rows[0]
		d.Balance.Current, err = core.ParseAmount(balance.get(row, "current"))
		errs = appendErr(errs, "balance current", err)
		d.Balance.Income, err = core.ParseAmount(balance.get(row, "income"))
		errs = appendErr(errs, "balance income", err)
		d.Balance.Expenses, err = core.ParseAmount(balance.get(row, "expenses"))
		errs = appendErr(errs, "balance expenses", err)
	}

	if txs, err := newTable("transactions", sections[1], "name", "category", "amount", "date"); err != nil {
		errs = append(errs, err)
	} else {
		d.Transactions = []core.Transaction{}
		for i, row := range txs.rows {
			t := core.Transaction{Name: txs.get(row, "name"), Category: core.Category(txs.get(row, "category"))}
			t.Amount, err = core.ParseAmount(txs.get(row, "amount"))
			errs = appendErr(errs, fmt.Sprintf("transaction row %d amount", i+2), err)
			t.Date, err = core.ParseDate(txs.get(row, "date"))
			errs = appendErr(errs, fmt.Sprintf("transaction row %d date", i+2), err)
			d.Transactions = append(d.Transactions, t)
		}
	}

	if pots, err := newTable("pots", sections[2], "id", "name", "total", "target"); err != nil {
		errs = append(errs, err)
	} else {
		d.Pots = []core.Pot{}
		for i, row := range pots.rows {
			p := core.Pot{Name: pots.get(row, "name"), Theme: pots.get(row, "theme")}
			p.ID, err = strconv.ParseInt(pots.get(row, "id"), 10, 64)
			errs = appendErr(errs, fmt.Sprintf("pot row %d id", i+2), err)
			p.Total, err = core.ParseAmount(pots.get(row, "total"))
			errs = appendErr(errs, fmt.Sprintf("pot row %d total", i+2), err)
			p.Target, err = core.ParseAmount(pots.get(row, "target"))
			errs = appendErr(errs, fmt.Sprintf("pot row %d target", i+2), err)
			d.Pots = append(d.Pots, p)
		}
	}

	if budgets, err := newTable("budgets", sections[3], "category", "maximum"); err != nil {
		errs = append(errs, err)
	} else {
		d.Budgets = []core.Budget{}
		for i, row := range budgets.rows {
			b := core.Budget{Category: budgets.get(row, "category"), Theme: budgets.get(row, "theme")}
			b.Maximum, err = core.ParseAmount(budgets.get(row, "maximum"))
			errs = appendErr(errs, fmt.Sprintf("budget row %d maximum", i+2), err)
			d.Budgets = append(d.Budgets, b)
		}
	}

	// Bills are optional: an empty range means none.
	if len(sections[4]) > 0 {
		if bills, err := newTable("bills", sections[4], "id", "title", "duedate", "amount"); err != nil {
			errs = append(errs, err)
		} else {
			for i, row := range bills.rows {
				b := core.Bill{Title: bills.get(row, "title")}
				b.ID, err = strconv.ParseInt(bills.get(row, "id"), 10, 64)
				errs = appendErr(errs, fmt.Sprintf("bill row %d id", i+2), err)
				b.DueDate, err = core.ParseDate(bills.get(row, "duedate"))
				errs = appendErr(errs, fmt.Sprintf("bill row %d due date", i+2), err)
				b.Amount, err = core.ParseAmount(bills.get(row, "amount"))
				errs = appendErr(errs, fmt.Sprintf("bill row %d amount", i+2), err)
				b.Paid, err = parsePaid(bills.get(row, "paid"))
				errs = appendErr(errs, fmt.Sprintf("bill row %d paid", i+2), err)
				d.Bills = append(d.Bills, b)
			}
		}
	}

	if len(errs) > 0 {
		return core.Dataset{}, fmt.Errorf("%w: %w", core.ErrInvalidSeed, errors.Join(errs...))
	}
	if err := d.Validate(); err != nil {
		return core.Dataset{}, err
	}
	return d, nil
}

type table struct {
	cols map[string]int
	rows [][]string
}

// newTable indexes the header row of values. Headers are matched ignoring
// case, spaces and underscores. Blank rows are skipped.
func newTable(name string, values [][]interface{}, required ...string) (table, error) {
	if len(values) == 0 {
		return table{}, fmt.Errorf("%s: range is empty", name)
	}
	t := table{cols: map[string]int{}}
	for i, h := range toStrings(values[0]) {
		t.cols[headerKey(h)] = i
	}
	var missing []string
	for _, r := range required {
		if _, ok := t.cols[r]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return table{}, fmt.Errorf("%s: missing columns %s", name, strings.Join(missing, ","))
	}
	for _, row := range values[1:] {
		cells := toStrings(row)
		if strings.Join(cells, "") == "" {
			continue
		}
		t.rows = append(t.rows, cells)
	}
	return t, nil
}

func (t table) get(row []string, col string) string {
	idx, ok := t.cols[col]
	if !ok {
		return ""
	}
	return safeGet(row, idx)
}

func headerKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "").Replace(h)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(n, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parsePaid treats an empty cell as unpaid.
func parsePaid(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	paid, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("paid %q: not a boolean", s)
	}
	return paid, nil
}

func appendErr(errs []error, what string, err error) []error {
	if err == nil {
		return errs
	}
	return append(errs, fmt.Errorf("%s: %w", what, err))
}

var _ Source = (*SheetsSource)(nil)
