// Package table turns a raw station export into a two-column string table.
//
// Station exports carry several preamble lines around the real header
// (download time, station description, quality-info sub-header). Those are
// removed by physical line index before CSV parsing, the header names are
// made unique, and the requested columns are selected through a gota
// DataFrame with every cell kept as a string so that type coercion stays
// with the caller.
package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrUnknownEncoding = errors.New("unknown character encoding")
	ErrNoHeader        = errors.New("no header row")
	ErrNoRows          = errors.New("no data rows")
	ErrColumnNotFound  = errors.New("column not found")
)

// maxLineBytes bounds a single physical line of the export.
const maxLineBytes = 1 << 20

// Options describes how to read an export.
type Options struct {
	// Encoding is a WHATWG encoding label such as "shift_jis" or "utf-8".
	Encoding string
	// SkipRows lists 0-based physical line indices to drop before parsing.
	SkipRows []int
	// Columns are the header names to keep, in output order.
	Columns []string
}

// Read decodes r, parses it and returns a DataFrame holding only opts.Columns.
func Read(r io.Reader, opts Options) (dataframe.DataFrame, error) {
	decoded, err := Decode(r, opts.Encoding)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	records, err := parseRecords(decoded, opts.SkipRows)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, ErrNoHeader
	}
	if len(records) == 1 {
		return dataframe.DataFrame{}, ErrNoRows
	}

	header := DedupeHeader(records[0])
	records[0] = header
	for i := 1; i < len(records); i++ {
		records[i] = fitWidth(records[i], len(header))
	}

	for _, col := range opts.Columns {
		if !contains(header, col) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %q (have %s)", ErrColumnNotFound, col, strings.Join(header, ", "))
		}
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load records: %w", df.Err)
	}

	if len(opts.Columns) == 0 {
		return df, nil
	}
	selected := df.Select(opts.Columns)
	if selected.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("select columns: %w", selected.Err)
	}
	return selected, nil
}

// Decode wraps r so that it yields UTF-8 text. A byte-order mark, if present,
// takes precedence over the configured encoding and is stripped.
func Decode(r io.Reader, encoding string) (io.Reader, error) {
	if encoding == "" {
		encoding = "utf-8"
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// parseRecords drops the skipped physical lines and parses the rest as CSV.
// Blank lines are ignored by the CSV reader.
func parseRecords(r io.Reader, skip []int) ([][]string, error) {
	skipSet := make(map[int]struct{}, len(skip))
	for _, i := range skip {
		skipSet[i] = struct{}{}
	}

	var kept bytes.Buffer
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for line := 0; scanner.Scan(); line++ {
		if _, ok := skipSet[line]; ok {
			continue
		}
		kept.Write(scanner.Bytes())
		kept.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}

	cr := csv.NewReader(&kept)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

// DedupeHeader makes header names unique: repeated names get ".1", ".2", ...
// suffixes and empty names become "Unnamed: <index>". Surrounding whitespace
// is part of the name.
func DedupeHeader(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		if n, dup := seen[name]; dup {
			for {
				n++
				candidate = name + "." + strconv.Itoa(n)
				if _, taken := seen[candidate]; !taken {
					break
				}
			}
			seen[name] = n
		}
		seen[candidate] = 0
		out[i] = candidate
	}
	return out
}

func fitWidth(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	if len(row) > width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
