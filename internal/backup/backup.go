// Package backup dumps and restores the whole persisted key space.
//
// JSON exports are a single object keyed by store key. Values that are JSON
// arrays, objects, numbers, booleans or null are embedded as-is; anything
// else (plain text, or a value that is itself a JSON string) is embedded as
// a JSON string holding the raw text. Import reverses both cases, so a round
// trip writes back the same logical values.
package backup

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"sarisari/backend/internal/store"
)

var ErrMalformed = errors.New("malformed backup")

func ExportJSON(ctx context.Context, kv store.KV) ([]byte, error) {
	entries, err := snapshot(ctx, kv)
	if err != nil {
		return nil, err
	}

	out := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		if embeddable(e.value) {
			var compact bytes.Buffer
			if err := json.Compact(&compact, e.value); err != nil {
				return nil, fmt.Errorf("compact %s: %w", e.key, err)
			}
			out[e.key] = compact.Bytes()
			continue
		}
		quoted, err := json.Marshal(string(e.value))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", e.key, err)
		}
		out[e.key] = quoted
	}
	return json.MarshalIndent(out, "", "  ")
}

// ExportCSV writes a key,value header followed by one row per key with the
// raw stored text.
func ExportCSV(ctx context.Context, kv store.KV) ([]byte, error) {
	entries, err := snapshot(ctx, kv)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"key", "value"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.key, string(e.value)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImportJSON writes every key of a JSON export back and returns the number
// of keys written. Keys absent from the export are left alone.
func ImportJSON(ctx context.Context, kv store.KV, r io.Reader) (int, error) {
	var in map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for i, key := range keys {
		if key == "" {
			return i, fmt.Errorf("%w: empty key", ErrMalformed)
		}
		raw := bytes.TrimSpace(in[key])
		value := raw
		if len(raw) > 0 && raw[0] == '"' {
			var text string
			if err := json.Unmarshal(raw, &text); err != nil {
				return i, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
			}
			value = []byte(text)
		}
		if err := kv.Set(ctx, key, value); err != nil {
			return i, fmt.Errorf("import %s: %w", key, err)
		}
	}
	return len(keys), nil
}

// ImportCSV reads a key,value export. The header row is required.
func ImportCSV(ctx context.Context, kv store.KV, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if header[0] != "key" || header[1] != "value" {
		return 0, fmt.Errorf("%w: unexpected header %q", ErrMalformed, header)
	}

	written := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if record[0] == "" {
			return written, fmt.Errorf("%w: empty key", ErrMalformed)
		}
		if err := kv.Set(ctx, record[0], []byte(record[1])); err != nil {
			return written, fmt.Errorf("import %s: %w", record[0], err)
		}
		written++
	}
}

// Clear deletes every key and returns how many were removed.
func Clear(ctx context.Context, kv store.KV) (int, error) {
	keys, err := kv.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list keys: %w", err)
	}
	for i, key := range keys {
		if err := kv.Delete(ctx, key); err != nil {
			return i, fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return len(keys), nil
}

type entry struct {
	key   string
	value []byte
}

func snapshot(ctx context.Context, kv store.KV) ([]entry, error) {
	keys, err := kv.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	entries := make([]entry, 0, len(keys))
	for _, key := range keys {
		value, err := kv.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		entries = append(entries, entry{key: key, value: value})
	}
	return entries, nil
}

// embeddable reports whether value can sit in the export as raw JSON without
// being confused with a quoted text value on the way back.
func embeddable(value []byte) bool {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] == '"' {
		return false
	}
	return json.Valid(trimmed)
}
