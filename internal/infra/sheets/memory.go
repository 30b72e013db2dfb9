package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/xavierca1/lead-engine/internal/infra/database"
)

var (
	rowRangeRe = regexp.MustCompile(`^(\d+):(\d+)$`)
	cellRe     = regexp.MustCompile(`^([A-Z]+)(\d+)$`)
)

// Memory is an in-process spreadsheet used by tests and local runs. It accepts
// the A1 forms the repositories produce: "Sheet", "Sheet!3:3" and "Sheet!B7".
type Memory struct {
	mu     sync.Mutex
	sheets map[string][][]string
	faults map[string][]error
	calls  map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		sheets: make(map[string][][]string),
		faults: make(map[string][]error),
		calls:  make(map[string]int),
	}
}

// Seed replaces the content of sheet. The first row is the header.
func (m *Memory) Seed(sheet string, rows ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[sheet] = copyRows(rows)
}

func (m *Memory) Rows(sheet string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRows(m.sheets[sheet])
}

// FailNext queues errs to be returned, in order, by the next calls of op
// ("get", "append", "update" or "batch_update").
func (m *Memory) FailNext(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[op] = append(m.faults[op], errs...)
}

// Calls counts how many times op was invoked, failed calls included.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *Memory) fault(op string) error {
	m.calls[op]++
	queue := m.faults[op]
	if len(queue) == 0 {
		return nil
	}
	m.faults[op] = queue[1:]
	return queue[0]
}

func (m *Memory) Get(ctx context.Context, rng string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("get"); err != nil {
		return nil, err
	}

	sheet, ref := splitRange(rng)
	rows := m.sheets[sheet]
	if ref == "" {
		return copyRows(trimRows(rows)), nil
	}

	if match := rowRangeRe.FindStringSubmatch(ref); match != nil {
		from, _ := strconv.Atoi(match[1])
		to, _ := strconv.Atoi(match[2])
		var out [][]string
		for n := from; n <= to && n <= len(rows); n++ {
			out = append(out, rows[n-1])
		}
		return copyRows(trimRows(out)), nil
	}

	if match := cellRe.FindStringSubmatch(ref); match != nil {
		col := columnIndex(match[1])
		row, _ := strconv.Atoi(match[2])
		if row > len(rows) || col >= len(rows[row-1]) {
			return nil, nil
		}
		return [][]string{{rows[row-1][col]}}, nil
	}
	return nil, fmt.Errorf("memory sheets: unsupported range %q", rng)
}

func (m *Memory) Append(ctx context.Context, sheet string, row []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("append"); err != nil {
		return 0, err
	}

	rows := trimRows(m.sheets[sheet])
	rows = append(rows, append([]string(nil), row...))
	m.sheets[sheet] = rows
	return len(rows), nil
}

func (m *Memory) Update(ctx context.Context, rng string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("update"); err != nil {
		return err
	}
	return m.write(rng, [][]string{{value}})
}

// BatchUpdate applies every range or none of them.
func (m *Memory) BatchUpdate(ctx context.Context, updates []database.CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("batch_update"); err != nil {
		return err
	}

	for _, u := range updates {
		if _, ref := splitRange(u.Range); !cellRe.MatchString(ref) {
			return fmt.Errorf("memory sheets: unsupported range %q", u.Range)
		}
	}
	for _, u := range updates {
		if err := m.write(u.Range, u.Values); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) write(rng string, values [][]string) error {
	sheet, ref := splitRange(rng)
	match := cellRe.FindStringSubmatch(ref)
	if match == nil {
		return fmt.Errorf("memory sheets: unsupported range %q", rng)
	}
	col := columnIndex(match[1])
	row, _ := strconv.Atoi(match[2])

	rows := m.sheets[sheet]
	for i, line := range values {
		r := row - 1 + i
		for len(rows) <= r {
			rows = append(rows, nil)
		}
		for j, v := range line {
			c := col + j
			for len(rows[r]) <= c {
				rows[r] = append(rows[r], "")
			}
			rows[r][c] = v
		}
	}
	m.sheets[sheet] = rows
	return nil
}

func splitRange(rng string) (sheet, ref string) {
	i := strings.LastIndex(rng, "!")
	if i < 0 {
		return strings.Trim(rng, "'"), ""
	}
	return strings.Trim(rng[:i], "'"), rng[i+1:]
}

func columnIndex(letters string) int {
	n := 0
	for _, ch := range letters {
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1
}

// trimRows drops trailing empty rows, the way the Sheets API does.
func trimRows(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && isEmptyRow(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
