package optimizer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnsupportedDataset is returned for dataset files that are neither CSV
// nor JSONL.
var ErrUnsupportedDataset = errors.New("optimizer: unsupported dataset type (use .csv or .jsonl)")

// Example is one labeled question/answer pair from a training dataset.
type Example struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// LoadExamples parses a labeled dataset, dispatching on the file extension.
// CSV files need question and answer columns; JSONL files need one
// {"question", "answer"} object per line. Rows with an empty question are
// skipped.
func LoadExamples(filename string, data []byte) ([]Example, error) {
	name := strings.ToLower(strings.TrimSpace(filename))
	switch {
	case strings.HasSuffix(name, ".csv"):
		return parseCSV(data)
	case strings.HasSuffix(name, ".jsonl"):
		return parseJSONL(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDataset, filename)
	}
}

func parseCSV(data []byte) ([]Example, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("optimizer: read csv header: %w", err)
	}

	qCol, aCol := -1, -1
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "question":
			qCol = i
		case "answer":
			aCol = i
		}
	}
	if qCol < 0 || aCol < 0 {
		return nil, errors.New("optimizer: csv needs question and answer columns")
	}

	var out []Example
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("optimizer: parse csv: %w", err)
		}
		if qCol >= len(record) || aCol >= len(record) {
			continue
		}

		q := strings.TrimSpace(record[qCol])
		if q == "" {
			continue
		}
		out = append(out, Example{Question: q, Answer: strings.TrimSpace(record[aCol])})
	}
	return out, nil
}

func parseJSONL(data []byte) ([]Example, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	var out []Example
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var ex Example
		if err := json.Unmarshal(line, &ex); err != nil {
			return nil, fmt.Errorf("optimizer: parse jsonl: %w", err)
		}

		ex.Question = strings.TrimSpace(ex.Question)
		ex.Answer = strings.TrimSpace(ex.Answer)
		if ex.Question == "" {
			continue
		}
		out = append(out, ex)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("optimizer: read jsonl: %w", err)
	}
	return out, nil
}
