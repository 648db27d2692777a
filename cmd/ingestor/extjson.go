package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/marinewx/seatemp/internal/core/domain"
)

// decodeReports reads a mongoexport dump, either a JSON array or one
// document per line, in relaxed or canonical extended JSON.
func decodeReports(r io.Reader) ([]domain.WeatherReport, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var docs []json.RawMessage
	if first == '[' {
		if err := json.NewDecoder(br).Decode(&docs); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
	} else {
		dec := json.NewDecoder(br)
		for {
			var doc json.RawMessage
			if err := dec.Decode(&doc); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, fmt.Errorf("decode document %d: %w", len(docs)+1, err)
			}
			docs = append(docs, doc)
		}
	}

	reports := make([]domain.WeatherReport, 0, len(docs))
	for i, doc := range docs {
		r, err := convertDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

// convertDocument turns one extended JSON document into a report. _id
// becomes id; non-finite doubles are dropped.
func convertDocument(raw []byte) (domain.WeatherReport, error) {
	var r domain.WeatherReport

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return r, err
	}

	plain, _ := unwrapExtJSON(doc)
	m, _ := plain.(map[string]any)
	if m == nil {
		return r, errors.New("document is not an object")
	}
	if id, ok := m["_id"]; ok {
		m["id"] = id
		delete(m, "_id")
	}

	b, err := json.Marshal(m)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, err
	}
	return r, nil
}

// unwrapExtJSON replaces extended JSON type wrappers with plain values. The
// second result is false when the value should be dropped.
func unwrapExtJSON(v any) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 1 {
			for k, inner := range t {
				if out, keep, ok := unwrapWrapper(k, inner); ok {
					return out, keep
				}
			}
		}
		out := make(map[string]any, len(t))
		for k, inner := range t {
			if u, keep := unwrapExtJSON(inner); keep {
				out[k] = u
			}
		}
		return out, true
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i], _ = unwrapExtJSON(inner)
		}
		return out, true
	default:
		return v, true
	}
}

func unwrapWrapper(key string, v any) (out any, keep, ok bool) {
	switch key {
	case "$oid":
		s, isStr := v.(string)
		return s, true, isStr
	case "$numberInt", "$numberLong", "$numberDecimal":
		s, isStr := v.(string)
		if !isStr {
			return nil, false, false
		}
		return json.Number(s), true, true
	case "$numberDouble":
		s, isStr := v.(string)
		if !isStr {
			return nil, false, false
		}
		switch s {
		case "NaN", "Infinity", "-Infinity":
			return nil, false, true
		}
		return json.Number(s), true, true
	case "$date":
		ts, err := extDate(v)
		if err != nil {
			return nil, false, false
		}
		return ts.UTC().Format(time.RFC3339Nano), true, true
	}
	return nil, false, false
}

// extDate accepts {"$date": "<RFC3339>"}, {"$date": <millis>} and
// {"$date": {"$numberLong": "<millis>"}}.
func extDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case string:
		return time.Parse(time.RFC3339Nano, t)
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms), nil
	case map[string]any:
		s, ok := t["$numberLong"].(string)
		if !ok || len(t) != 1 {
			return time.Time{}, errors.New("unsupported $date")
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms), nil
	}
	return time.Time{}, errors.New("unsupported $date")
}
