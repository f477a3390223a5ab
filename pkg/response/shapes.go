// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"strconv"
	"strings"

	"github.com/stratastor/svcgate/pkg/errors"
)

// parseGeneric handles the CSV/colon-delimited shape most lsXXX commands
// return. Whether the first row is a header is not declared anywhere in
// the output itself, so it's inferred with hasHeader. When no header is
// present the output is a sequence of blank-line-delimited blocks (the
// shape a detailed "lsvdisk -delim ," dump uses): within a block, each
// row's first cell is a key and the remaining cells (space-joined) are
// its value, so a key repeated across rows of one block promotes to a
// list.
func parseGeneric(body string, delim rune) ([]Record, error) {
	rows := delimitedRows(body, delim)
	if len(rows) == 0 {
		return nil, nil
	}

	header, hasHdr := hasHeader(rows)
	if !hasHdr {
		return blockRecords(body, delim), nil
	}

	var out []Record
	for _, row := range rows[1:] {
		out = append(out, zipHeader(header, row))
	}
	return out, nil
}

// delimitedRows splits body into non-blank lines and each line into
// delim-separated, quote-aware fields.
func delimitedRows(body string, delim rune) [][]string {
	var rows [][]string
	for _, l := range splitLines(body) {
		rows = append(rows, splitDelim(l, delim))
	}
	return rows
}

// splitDelim splits a line on delim, honoring single-quoted fields the way
// the CLI quotes values that themselves contain the delimiter.
func splitDelim(line string, delim rune) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	lastWasDelim := false
	for _, r := range line {
		switch {
		case r == '\'':
			inQuote = !inQuote
			lastWasDelim = false
		case r == delim && !inQuote:
			// A space delimiter collapses runs of repeated separators,
			// the way fixed-width CLI tables pad columns; any other
			// delimiter treats every occurrence as a field boundary so
			// genuinely empty CSV-style fields survive.
			if delim == ' ' && lastWasDelim {
				continue
			}
			fields = append(fields, cur.String())
			cur.Reset()
			lastWasDelim = true
		default:
			cur.WriteRune(r)
			lastWasDelim = false
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// zipHeader pairs header cells with row cells (both trimmed). A header
// name that repeats promotes the zipped value into a []string, with
// further repeats appending to it.
func zipHeader(header, row []string) Record {
	rec := Record{}
	for i, key := range header {
		if i >= len(row) {
			break
		}
		addField(rec, strings.TrimSpace(key), strings.TrimSpace(row[i]))
	}
	return rec
}

// addField sets rec[key] = value, promoting to a []string if key was
// already set.
func addField(rec Record, key, value string) {
	existing, ok := rec[key]
	if !ok {
		rec[key] = value
		return
	}
	switch v := existing.(type) {
	case string:
		rec[key] = []string{v, value}
	case []string:
		rec[key] = append(v, value)
	}
}

// blockRecords splits body's raw lines (blank lines significant) into
// blank-line-delimited blocks, delim-splits each non-blank line within a
// block, and turns each block into one Record via blockRecord.
func blockRecords(body string, delim rune) []Record {
	var out []Record
	var cur [][]string
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, blockRecord(cur))
		cur = nil
	}
	for _, l := range rawLines(body) {
		if strings.TrimSpace(l) == "" {
			flush()
			continue
		}
		cur = append(cur, splitDelim(l, delim))
	}
	flush()
	return out
}

// singleBlockRecord treats every non-blank line of body as one key/value
// row of a single block (lsmetadatavdisk: the whole response is one
// block, blank lines notwithstanding).
func singleBlockRecord(body string, delim rune) Record {
	var rows [][]string
	for _, l := range splitLines(body) {
		rows = append(rows, splitDelim(l, delim))
	}
	return blockRecord(rows)
}

// blockRecord turns one block of delimited rows into a single Record:
// each row's first cell is a key, the remaining cells (space-joined) are
// its value. A key seen more than once in the block promotes to a
// []string.
func blockRecord(rows [][]string) Record {
	rec := Record{}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		key := strings.TrimSpace(row[0])
		if key == "" {
			continue
		}
		value := strings.TrimSpace(strings.Join(row[1:], " "))
		addField(rec, key, value)
	}
	return rec
}

// hasHeader is a statistical heuristic: sample up to 20 rows of matching
// column count and score each column +1 if the candidate header cell
// diverges from that column's apparent type (numeric vs fixed-width
// string), -1 if it matches; a column with neither type casts no vote. A
// positive total score means a header is present. With no same-width row
// to compare against, there is no header.
func hasHeader(rows [][]string) ([]string, bool) {
	if len(rows) < 1 {
		return nil, false
	}
	width := len(rows[0])
	if width == 0 {
		return nil, false
	}
	// Testable Property 5: the first row literally equal to a later
	// data row can never score as a header.
	sample := rows[1:]
	if len(sample) > 20 {
		sample = sample[:20]
	}

	var matching [][]string
	for _, r := range sample {
		if len(r) == width {
			matching = append(matching, r)
		}
	}
	if len(matching) == 0 {
		return rows[0], false
	}
	for _, r := range matching {
		if equalRows(r, rows[0]) {
			return rows[0], false
		}
	}

	score := 0
	for col := 0; col < width; col++ {
		headerCell := rows[0][col]
		numeric := true
		for _, r := range matching {
			if !isNumeric(r[col]) {
				numeric = false
				break
			}
		}
		if numeric {
			if isNumeric(headerCell) {
				score--
			} else {
				score++
			}
			continue
		}
		width0 := len(matching[0][col])
		uniform := true
		for _, r := range matching {
			if len(r[col]) != width0 {
				uniform = false
				break
			}
		}
		if !uniform {
			// Neither numeric nor fixed-width: the column has no type to
			// compare the header cell against, so it casts no vote.
			continue
		}
		if len(headerCell) != width0 {
			score++
		} else {
			score--
		}
	}

	return rows[0], score > 0
}

func equalRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if _, err := strconv.ParseInt(s[2:], 16, 64); err == nil {
			return true
		}
	}
	return false
}

// parseLsRoute handles "svcinfo lsroute" output: one or more
// "... routing table" sections, each followed by its own fixed-width
// table whose header renames " Next Hop " to " Next_Hop " so it survives
// whitespace splitting as a single column name.
func parseLsRoute(body string) ([]Record, error) {
	const marker = "routing table"
	var out []Record
	for _, sec := range splitKeepSeparatorSections(body, marker) {
		lines := splitLines(sec)
		if len(lines) == 0 {
			continue
		}
		lines[0] = strings.ReplaceAll(lines[0], "Next Hop", "Next_Hop")
		recs, err := parseGeneric(strings.Join(lines, "\n"), ' ')
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

func splitKeepSeparatorSections(body, marker string) []string {
	var sections []string
	rest := body
	for {
		idx := strings.Index(rest, marker)
		if idx == -1 {
			if strings.TrimSpace(rest) != "" {
				sections = append(sections, rest)
			}
			break
		}
		end := idx + len(marker)
		nl := strings.Index(rest[end:], "\n")
		if nl == -1 {
			break
		}
		tableStart := end + nl + 1
		nextIdx := strings.Index(rest[tableStart:], marker)
		if nextIdx == -1 {
			sections = append(sections, rest[tableStart:])
			break
		}
		// Cut at the start of the line holding the next marker, so that
		// line's leading text (e.g. "IPv6 ") doesn't end up as a data row.
		cut := tableStart + strings.LastIndex(rest[tableStart:tableStart+nextIdx], "\n") + 1
		sections = append(sections, rest[tableStart:cut])
		rest = rest[cut:]
	}
	return sections
}

// parseMetadataEntry parses the first line of body as an alternating
// sequence of "Key:" "Value" tokens (e.g. "Token: 1234 TimeStamp:
// 20141013"). Everything after the first newline is preserved verbatim
// under the "content" key, for the "retrieve" variant whose response is a
// header line followed by a raw body.
func parseMetadataEntry(body string) (Record, error) {
	lines := strings.SplitN(body, "\n", 2)
	rec := colonSequenceToRecord(lines[0])
	if len(lines) == 2 && strings.TrimSpace(lines[1]) != "" {
		rec["content"] = lines[1]
	}
	return rec, nil
}

// colonSequenceToRecord parses "Key: value Key2: value2 ..." into a
// Record, splitting on tokens that end in ':'.
func colonSequenceToRecord(line string) Record {
	rec := Record{}
	fields := strings.Fields(line)
	var key string
	var valueParts []string
	flush := func() {
		if key == "" {
			return
		}
		rec[key] = strings.TrimSpace(strings.Join(valueParts, " "))
	}
	for _, f := range fields {
		if strings.HasSuffix(f, ":") {
			flush()
			key = strings.TrimSuffix(f, ":")
			valueParts = nil
			continue
		}
		valueParts = append(valueParts, f)
	}
	flush()
	return rec
}

// parseLabeledColumns implements the shape shared by
// MetadataEntryList/MetadataDbList: the first whitespace-tokenized line
// supplies column labels (at least 3 tokens required when labelCount ==
// 3), and each following line is zipped to those labels positionally.
// A positive labelCount caps the labels at that many, so labelCount == 1
// (metadata_db_list) keeps only the first label's column; labelCount <= 0
// means "use every label found on the first line".
func parseLabeledColumns(body string, labelCount int) ([]Record, error) {
	lines := splitLines(body)
	if len(lines) == 0 {
		return nil, nil
	}
	labels := strings.Fields(lines[0])
	if labelCount == 3 && len(labels) < 3 {
		return nil, errors.New(errors.ResponseUnexpectedShape, "expected at least 3 column labels")
	}
	if labelCount > 0 && len(labels) > labelCount {
		labels = labels[:labelCount]
	}

	var out []Record
	for _, l := range lines[1:] {
		tokens := strings.Fields(l)
		rec := Record{}
		for i, label := range labels {
			if i >= len(tokens) {
				break
			}
			rec[label] = tokens[i]
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out, nil
}
