package cache

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// EntryVersion is the current payload format.
const EntryVersion = 1

// Entry is one stored dataset.
type Entry struct {
	Name      string         `json:"name"`
	Version   int            `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	Rows      []types.Record `json:"rows"`
	Meta      types.Meta     `json:"meta"`
}

var errCorruptPayload = errors.New("corrupt cache payload")

func encodeEntry(e Entry) ([]byte, error) {
	if e.Rows == nil {
		e.Rows = []types.Record{}
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q: %w", e.Name, err)
	}
	return data, nil
}

// decodeEntry reads a payload in any known shape:
//   - the current {name, version, timestamp, rows, meta} object
//   - a bare array of rows written by older releases
//
// When name is a known dataset, rows missing any of its fields get that
// field as an empty string so decoded records are never sparse.
func decodeEntry(name string, data []byte) (Entry, error) {
	if !gjson.ValidBytes(data) {
		return Entry{}, fmt.Errorf("%w: %q is not valid JSON", errCorruptPayload, name)
	}

	doc := gjson.ParseBytes(data)
	switch {
	case doc.IsArray():
		var rows []types.Record
		if err := json.Unmarshal(data, &rows); err != nil {
			return Entry{}, fmt.Errorf("%w: %q: %v", errCorruptPayload, name, err)
		}
		return Entry{
			Name:    name,
			Version: EntryVersion,
			Rows:    fillRows(name, rows),
			Meta:    types.Meta{RowCount: len(rows), HeaderRowIndex: -1, Columns: fieldNames(name)},
		}, nil

	case doc.IsObject():
		if !doc.Get("rows").IsArray() {
			return Entry{}, fmt.Errorf("%w: %q has no rows", errCorruptPayload, name)
		}
		if v := doc.Get("version").Int(); v > EntryVersion {
			return Entry{}, fmt.Errorf("%q was written by a newer release (version %d)", name, v)
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return Entry{}, fmt.Errorf("%w: %q: %v", errCorruptPayload, name, err)
		}
		if e.Name == "" {
			e.Name = name
		}
		if e.Version == 0 {
			e.Version = EntryVersion
		}
		e.Rows = fillRows(name, e.Rows)
		return e, nil
	}
	return Entry{}, fmt.Errorf("%w: %q has unexpected shape", errCorruptPayload, name)
}

func fillRows(name string, rows []types.Record) []types.Record {
	fields := canon.FieldsFor(types.Dataset(name))
	for i, r := range rows {
		if r == nil {
			r = make(types.Record, len(fields))
			rows[i] = r
		}
		for _, f := range fields {
			if _, ok := r[f]; !ok {
				r[f] = types.String("")
			}
		}
	}
	return rows
}

func fieldNames(name string) []string {
	fields := canon.FieldsFor(types.Dataset(name))
	if fields == nil {
		return nil
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
