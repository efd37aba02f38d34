package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// fakeAPI is an in-memory spreadsheet keyed by spreadsheet id and sheet name
type fakeAPI struct {
	mu     sync.Mutex
	nextID int
	books  map[string]map[string][][]any
	ids    map[string]map[string]int64
	calls  []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		books: make(map[string]map[string][][]any),
		ids:   make(map[string]map[string]int64),
	}
}

func (f *fakeAPI) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeAPI) CreateSpreadsheet(_ context.Context, _ string, sheetNames []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	f.nextID++
	id := fmt.Sprintf("sheet-%d", f.nextID)
	f.books[id] = make(map[string][][]any)
	f.ids[id] = make(map[string]int64)
	for i, name := range sheetNames {
		f.books[id][name] = nil
		f.ids[id][name] = int64(i)
	}
	return id, nil
}

func (f *fakeAPI) SheetIDs(_ context.Context, spreadsheetID string) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("sheet_ids")
	ids, ok := f.ids[spreadsheetID]
	if !ok {
		return nil, ErrSpreadsheetNotFound
	}
	out := make(map[string]int64, len(ids))
	for k, v := range ids {
		out[k] = v
	}
	return out, nil
}

func (f *fakeAPI) GetValues(_ context.Context, spreadsheetID, rng string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get")
	sheet, err := f.sheet(spreadsheetID, rng)
	if err != nil {
		return nil, err
	}
	out := make([][]any, len(sheet))
	for i, r := range sheet {
		out[i] = append([]any(nil), r...)
	}
	return out, nil
}

func (f *fakeAPI) AppendValues(_ context.Context, spreadsheetID, rng string, rows [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("append")
	name, _, _ := strings.Cut(rng, "!")
	if _, err := f.sheet(spreadsheetID, rng); err != nil {
		return err
	}
	f.books[spreadsheetID][name] = append(f.books[spreadsheetID][name], rows...)
	return nil
}

func (f *fakeAPI) UpdateValues(_ context.Context, spreadsheetID, rng string, rows [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update")
	return f.write(spreadsheetID, rng, rows)
}

func (f *fakeAPI) BatchUpdateValues(_ context.Context, spreadsheetID string, data map[string][][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("batch_update")
	for rng, rows := range data {
		if err := f.write(spreadsheetID, rng, rows); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAPI) DeleteRows(_ context.Context, spreadsheetID string, sheetID, start, end int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")
	for name, id := range f.ids[spreadsheetID] {
		if id != sheetID {
			continue
		}
		rows := f.books[spreadsheetID][name]
		if end > int64(len(rows)) {
			return fmt.Errorf("row %d out of range", end)
		}
		f.books[spreadsheetID][name] = append(rows[:start:start], rows[end:]...)
		return nil
	}
	return fmt.Errorf("unknown sheet id %d", sheetID)
}

func (f *fakeAPI) sheet(spreadsheetID, rng string) ([][]any, error) {
	book, ok := f.books[spreadsheetID]
	if !ok {
		return nil, ErrSpreadsheetNotFound
	}
	name, _, _ := strings.Cut(rng, "!")
	sheet, ok := book[name]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", rng)
	}
	return sheet, nil
}

// write handles single-row ranges of the form Sheet!A<n>:<col><n>
func (f *fakeAPI) write(spreadsheetID, rng string, rows [][]any) error {
	if _, err := f.sheet(spreadsheetID, rng); err != nil {
		return err
	}
	name, cells, _ := strings.Cut(rng, "!")
	start, _, _ := strings.Cut(cells, ":")
	n, err := strconv.Atoi(strings.TrimLeft(start, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	if err != nil {
		return fmt.Errorf("unsupported range %s", rng)
	}
	sheet := f.books[spreadsheetID][name]
	for len(sheet) < n-1+len(rows) {
		sheet = append(sheet, nil)
	}
	for i, r := range rows {
		sheet[n-1+i] = append([]any(nil), r...)
	}
	f.books[spreadsheetID][name] = sheet
	return nil
}

// seed replaces the content of a sheet
func (f *fakeAPI) seed(spreadsheetID, sheet string, rows ...[]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books[spreadsheetID][sheet] = rows
}
