package models

// NoteRecord maps a string-coerced intern id to free-text note content.
type NoteRecord struct {
	InternID string `json:"intern_id"`
	Note     string `json:"note"`
}

// NoteConsistency reports whether the CSV table and JSON document agree.
type NoteConsistency struct {
	Consistent      bool     `json:"consistent"`
	CSVPresent      bool     `json:"csv_present"`
	JSONPresent     bool     `json:"json_present"`
	CSVCount        int      `json:"csv_count"`
	JSONCount       int      `json:"json_count"`
	MissingFromCSV  []string `json:"missing_from_csv"`
	MissingFromJSON []string `json:"missing_from_json"`
	TextMismatch    []string `json:"text_mismatch"`
}
