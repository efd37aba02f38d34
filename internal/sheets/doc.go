// Package sheets stores tracker records in a Google Sheets spreadsheet.
//
// Each record type lives on its own sheet whose first row is a header.
// Rows are addressed by the value in column A (the record id, or the key
// for settings). A Session carries the spreadsheet id explicitly so several
// spreadsheets can be used side by side.
package sheets
