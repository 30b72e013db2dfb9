package database

import (
	"context"
	"sync"
)

// record is one data row with its cells addressed by header name.
type record struct {
	Number int
	Values map[string]string
}

func (r record) get(col string) string {
	return r.Values[col]
}

// table maps a header-discovered sheet onto keyed records.
//
// Columns are resolved by name on every call, so operators may reorder or add
// columns without a code change. The key -> row index is rebuilt on each full
// read and extended on append. Before a keyed write the indexed row is read back
// and its key compared; a mismatch means rows were moved outside the bot and
// forces a rebuild.
//
// There is no locking against other writers. Two writers touching the same row
// race at cell granularity and the last write wins.
type table struct {
	store  Storage
	sheet  string
	schema []string
	keyOf  func(map[string]string) string

	mu    sync.Mutex
	index map[string]int
}

func newTable(store Storage, sheet string, schema []string, keyOf func(map[string]string) string) *table {
	return &table{
		store:  store,
		sheet:  sheet,
		schema: schema,
		keyOf:  keyOf,
		index:  make(map[string]int),
	}
}

// scan reads the whole sheet and rebuilds the index.
func (t *table) scan(ctx context.Context) ([]string, []record, error) {
	values, err := t.store.Get(ctx, t.sheet)
	if err != nil {
		return nil, nil, err
	}
	if len(values) == 0 {
		t.resetIndex(nil)
		return nil, nil, nil
	}

	header := normalizeHeader(values[0])
	records := make([]record, 0, len(values)-1)
	index := make(map[string]int, len(values)-1)
	for i, row := range values[1:] {
		rec := toRecord(header, row, i+2)
		key := t.keyOf(rec.Values)
		if key == "" {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = rec.Number
		}
		records = append(records, rec)
	}
	t.resetIndex(index)
	return header, records, nil
}

func (t *table) resetIndex(index map[string]int) {
	if index == nil {
		index = make(map[string]int)
	}
	t.mu.Lock()
	t.index = index
	t.mu.Unlock()
}

func (t *table) lookup(key string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.index[key]
	return n, ok
}

func (t *table) remember(key string, row int) {
	t.mu.Lock()
	t.index[key] = row
	t.mu.Unlock()
}

func (t *table) readHeader(ctx context.Context) ([]string, error) {
	values, err := t.store.Get(ctx, headerRange(t.sheet))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return normalizeHeader(values[0]), nil
}

// ensureHeader writes the schema as the first row of an empty sheet.
func (t *table) ensureHeader(ctx context.Context) ([]string, error) {
	header, err := t.readHeader(ctx)
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		return header, nil
	}

	err = t.store.BatchUpdate(ctx, []CellUpdate{{
		Range:  cellRange(t.sheet, 0, 1),
		Values: [][]string{t.schema},
	}})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), t.schema...), nil
}

// find locates the record for key. The index is trusted only after the row it
// points at has been read back and still carries key.
func (t *table) find(ctx context.Context, key string) ([]string, record, bool, error) {
	if n, ok := t.lookup(key); ok {
		header, err := t.readHeader(ctx)
		if err != nil {
			return nil, record{}, false, err
		}
		values, err := t.store.Get(ctx, rowRange(t.sheet, n))
		if err != nil {
			return nil, record{}, false, err
		}
		if len(values) > 0 {
			rec := toRecord(header, values[0], n)
			if t.keyOf(rec.Values) == key {
				return header, rec, true, nil
			}
		}
	}

	header, records, err := t.scan(ctx)
	if err != nil {
		return nil, record{}, false, err
	}
	n, ok := t.lookup(key)
	if !ok {
		return header, record{}, false, nil
	}
	for _, rec := range records {
		if rec.Number == n {
			return header, rec, true, nil
		}
	}
	return header, record{}, false, nil
}

func (t *table) list(ctx context.Context) ([]record, error) {
	_, records, err := t.scan(ctx)
	return records, err
}

func (t *table) append(ctx context.Context, values map[string]string) (int, error) {
	header, err := t.ensureHeader(ctx)
	if err != nil {
		return 0, err
	}

	row := make([]string, len(header))
	for i, col := range header {
		row[i] = values[col]
	}

	n, err := t.store.Append(ctx, t.sheet, row)
	if err != nil {
		return 0, err
	}
	if key := t.keyOf(values); key != "" && n > 0 {
		t.remember(key, n)
	}
	return n, nil
}

// update writes the given columns of the row at rec. Columns missing from the
// header are skipped. A single column goes out as one cell update.
func (t *table) update(ctx context.Context, header []string, rec record, values map[string]string) error {
	var updates []CellUpdate
	for i, col := range header {
		v, ok := values[col]
		if !ok {
			continue
		}
		updates = append(updates, CellUpdate{
			Range:  cellRange(t.sheet, i, rec.Number),
			Values: [][]string{{v}},
		})
	}

	switch len(updates) {
	case 0:
		return nil
	case 1:
		return t.store.Update(ctx, updates[0].Range, updates[0].Values[0][0])
	default:
		return t.store.BatchUpdate(ctx, updates)
	}
}

func toRecord(header []string, row []string, number int) record {
	values := make(map[string]string, len(header))
	for i, col := range header {
		if col == "" {
			continue
		}
		if i < len(row) {
			values[col] = row[i]
		} else {
			values[col] = ""
		}
	}
	return record{Number: number, Values: values}
}
