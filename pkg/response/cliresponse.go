// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package response

// CLIResponse is the parsed, iterable result of one command invocation:
// the records a response parser produced, plus the three derived views
// the reference client's CLIResponse offers callers that want one merged
// record rather than a list.
type CLIResponse struct {
	Records []Record
}

// AsList returns a shallow copy of the parsed records.
func (r CLIResponse) AsList() []Record {
	out := make([]Record, len(r.Records))
	copy(out, r.Records)
	return out
}

// AsSingleElement folds every record into one via mergeCompact. For a
// single-record response this is the identity transform (Testable
// Property 3); for records whose every field agrees it reduces to any
// one of them (Testable Property 4); fields that disagree across
// records collapse into a []string in first-seen order.
func (r CLIResponse) AsSingleElement() Record {
	return mergeCompact(r.Records)
}

// AsDict re-indexes the records by the value of field key, merging (via
// the same mergeCompact rule AsSingleElement uses) any records that share
// a key value.
func (r CLIResponse) AsDict(key string) map[string]Record {
	groups := map[string][]Record{}
	var order []string
	for _, rec := range r.Records {
		k := rec.GetString(key)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], rec)
	}
	out := make(map[string]Record, len(groups))
	for _, k := range order {
		out[k] = mergeCompact(groups[k])
	}
	return out
}

// mergeCompact implements the reference client's append_dict/compact_dict
// pipeline: every value seen for a field, across every record, is
// appended (in order, with []string fields flattened into their
// elements); a field whose accumulated values are all equal collapses
// back down to that single scalar.
func mergeCompact(records []Record) Record {
	if len(records) == 0 {
		return Record{}
	}

	acc := map[string][]string{}
	var order []string
	for _, rec := range records {
		for key, val := range rec {
			if _, ok := acc[key]; !ok {
				order = append(order, key)
			}
			switch v := val.(type) {
			case []string:
				acc[key] = append(acc[key], v...)
			case string:
				acc[key] = append(acc[key], v)
			}
		}
	}

	out := Record{}
	for _, key := range order {
		values := acc[key]
		if allEqual(values) {
			out[key] = values[0]
		} else {
			out[key] = values
		}
	}
	return out
}

func allEqual(values []string) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
