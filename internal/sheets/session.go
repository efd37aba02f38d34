package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/benvon/bakatracker/internal/storage"
	"go.uber.org/zap"
)

// Session is an open spreadsheet. All reads and writes go to SpreadsheetID.
type Session struct {
	api           API
	spreadsheetID string
	logger        *zap.Logger

	// mu serializes read-modify-write cycles against the row index
	mu       sync.Mutex
	sheetIDs map[string]int64
}

// Create makes a new spreadsheet with every sheet and its header row
func Create(ctx context.Context, api API, title string, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = DefaultTitle
	}

	id, err := api.CreateSpreadsheet(ctx, title, SheetNames())
	if err != nil {
		return nil, err
	}

	headers := make(map[string][][]any, len(layout))
	for _, l := range layout {
		headers[headerRange(l.name, len(l.header))] = [][]any{toCells(l.header)}
	}
	if err := api.BatchUpdateValues(ctx, id, headers); err != nil {
		return nil, fmt.Errorf("failed to write header rows: %w", err)
	}

	logger.Info("spreadsheet_created",
		zap.String("spreadsheet_id", id),
		zap.String("title", title),
	)
	return &Session{api: api, spreadsheetID: id, logger: logger}, nil
}

// Open attaches to an existing spreadsheet and checks its layout
func Open(ctx context.Context, api API, spreadsheetID string, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	s := &Session{api: api, spreadsheetID: spreadsheetID, logger: logger}
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenOrCreate opens spreadsheetID, or creates a spreadsheet when it is empty
func OpenOrCreate(ctx context.Context, api API, spreadsheetID, title string, logger *zap.Logger) (*Session, error) {
	if spreadsheetID == "" {
		return Create(ctx, api, title, logger)
	}
	return Open(ctx, api, spreadsheetID, logger)
}

// SpreadsheetID returns the id of the open spreadsheet
func (s *Session) SpreadsheetID() string {
	return s.spreadsheetID
}

// Ping verifies the spreadsheet is reachable and has every sheet
func (s *Session) Ping(ctx context.Context) error {
	ids, err := s.api.SheetIDs(ctx, s.spreadsheetID)
	if err != nil {
		return err
	}
	var missing []string
	for _, name := range SheetNames() {
		if _, ok := ids[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("spreadsheet %s is missing sheets: %s", s.spreadsheetID, strings.Join(missing, ", "))
	}

	s.mu.Lock()
	s.sheetIDs = ids
	s.mu.Unlock()
	return nil
}

// row is one data row keyed by header name
type row struct {
	index  int // zero-based position in the sheet, header is 0
	values map[string]string
}

// table is the decoded content of a sheet
type table struct {
	header []string
	rows   []row
}

func (t *table) find(key string) (row, bool) {
	for _, r := range t.rows {
		if r.values[t.header[0]] == key {
			return r, true
		}
	}
	return row{}, false
}

func (s *Session) read(ctx context.Context, sheet string) (*table, error) {
	values, err := s.api.GetValues(ctx, s.spreadsheetID, fullRange(sheet))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	t := &table{}
	if len(values) == 0 {
		return t, nil
	}
	t.header = toStrings(values[0])
	if len(t.header) == 0 {
		return t, nil
	}
	for i, raw := range values[1:] {
		cells := toStrings(raw)
		// Rows with an empty key are blank lines left in the sheet
		if len(cells) == 0 || cells[0] == "" {
			continue
		}
		r := row{index: i + 1, values: make(map[string]string, len(t.header))}
		for j, h := range t.header {
			if j < len(cells) {
				r.values[h] = cells[j]
			} else {
				r.values[h] = ""
			}
		}
		t.rows = append(t.rows, r)
	}
	return t, nil
}

// rows returns every data row of a sheet
func (s *Session) rows(ctx context.Context, sheet string) ([]map[string]string, error) {
	t, err := s.read(ctx, sheet)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]string, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r.values)
	}
	return out, nil
}

// get returns the row whose first column equals key
func (s *Session) get(ctx context.Context, sheet, key string) (map[string]string, error) {
	t, err := s.read(ctx, sheet)
	if err != nil {
		return nil, err
	}
	r, ok := t.find(key)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", sheet, key, storage.ErrNotFound)
	}
	return r.values, nil
}

// append writes a new row in header order
func (s *Session) append(ctx context.Context, sheet string, header []string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(ctx, sheet, header, values)
}

// appendLocked is append for callers holding s.mu
func (s *Session) appendLocked(ctx context.Context, sheet string, header []string, values map[string]string) error {
	if err := s.api.AppendValues(ctx, s.spreadsheetID, fullRange(sheet), [][]any{encode(header, values)}); err != nil {
		return fmt.Errorf("failed to append to %s: %w", sheet, err)
	}
	return nil
}

// update overwrites the given columns of the row keyed by key. Columns not
// present in values keep their current content.
func (s *Session) update(ctx context.Context, sheet, key string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, sheet, key, values)
}

// updateLocked is update for callers holding s.mu
func (s *Session) updateLocked(ctx context.Context, sheet, key string, values map[string]string) error {
	t, err := s.read(ctx, sheet)
	if err != nil {
		return err
	}
	r, ok := t.find(key)
	if !ok {
		return fmt.Errorf("%s %s: %w", sheet, key, storage.ErrNotFound)
	}
	merged := make(map[string]string, len(t.header))
	for h, v := range r.values {
		merged[h] = v
	}
	for h, v := range values {
		merged[h] = v
	}

	rng := fmt.Sprintf("%s!A%d:Z%d", sheet, r.index+1, r.index+1)
	if err := s.api.UpdateValues(ctx, s.spreadsheetID, rng, [][]any{encode(t.header, merged)}); err != nil {
		return fmt.Errorf("failed to update %s %s: %w", sheet, key, err)
	}
	return nil
}

// upsert updates the row keyed by key, appending it when absent. The lookup
// and the write happen under one lock so a key is never appended twice.
func (s *Session) upsert(ctx context.Context, sheet string, header []string, key string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.updateLocked(ctx, sheet, key, values)
	if errors.Is(err, storage.ErrNotFound) {
		return s.appendLocked(ctx, sheet, header, values)
	}
	return err
}

// delete removes the row keyed by key
func (s *Session) delete(ctx context.Context, sheet, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheetID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	t, err := s.read(ctx, sheet)
	if err != nil {
		return err
	}
	r, ok := t.find(key)
	if !ok {
		return fmt.Errorf("%s %s: %w", sheet, key, storage.ErrNotFound)
	}
	if err := s.api.DeleteRows(ctx, s.spreadsheetID, sheetID, int64(r.index), int64(r.index+1)); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", sheet, key, err)
	}
	return nil
}

// sheetID resolves a sheet title; callers hold s.mu
func (s *Session) sheetID(ctx context.Context, sheet string) (int64, error) {
	if id, ok := s.sheetIDs[sheet]; ok {
		return id, nil
	}
	ids, err := s.api.SheetIDs(ctx, s.spreadsheetID)
	if err != nil {
		return 0, err
	}
	s.sheetIDs = ids
	id, ok := ids[sheet]
	if !ok {
		return 0, fmt.Errorf("sheet %s does not exist in spreadsheet %s", sheet, s.spreadsheetID)
	}
	return id, nil
}

func headerRange(sheet string, columns int) string {
	return fmt.Sprintf("%s!A1:%c1", sheet, rune('A'+columns-1))
}

func encode(header []string, values map[string]string) []any {
	out := make([]any, len(header))
	for i, h := range header {
		out[i] = values[h]
	}
	return out
}

func toCells(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func toStrings(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		out[i] = fmt.Sprint(c)
	}
	return out
}
