package repository

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/estore/estore/entity"
	"github.com/estore/estore/schema"
	"github.com/estore/estore/value"
	"github.com/jinzhu/now"
	"github.com/woodsbury/decimal128"
)

// StoreFromJSON reconstructs an entity from an arbitrary decoded-JSON map —
// field names matched the same three-pass way schema.Schema.LookupField
// does, nested sub-entities resolved either by a bare identifier or by a
// nested map — then stores it.
func (r *Repository) StoreFromJSON(ctx context.Context, m map[string]any) (entity.Entity, error) {
	row, err := r.rowFromJSON(r.schema, m)
	if err != nil {
		return nil, err
	}

	e := r.factory()
	for name, v := range row {
		if err := e.SetField(name, v); err != nil {
			return nil, err
		}
	}
	if idRaw, ok := m[r.schema.IDField]; ok && idRaw != nil {
		_ = e.SetField(r.schema.IDField, value.NewID(idRaw))
	}

	if _, err := r.Store(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// rowFromJSON converts ext's matched fields into a value.Record for schema
// s, recursing into nested maps for Ref/RefList fields.
func (r *Repository) rowFromJSON(s *schema.Schema, ext map[string]any) (value.Record, error) {
	resolved := s.ResolveRow(ext)
	row := make(value.Record, len(resolved))
	for _, f := range s.Fields {
		raw, ok := resolved[f.Name]
		if !ok || raw == nil {
			continue
		}
		v, err := r.fieldValueFromJSON(f, raw)
		if err != nil {
			return nil, fmt.Errorf("repository: field %s.%s: %w", s.Table, f.Name, err)
		}
		row[f.Name] = v
	}
	return row, nil
}

func (r *Repository) fieldValueFromJSON(f *schema.Field, raw any) (value.Value, error) {
	switch f.Type {
	case schema.Bool:
		b, ok := raw.(bool)
		if !ok {
			return value.Value{}, fmt.Errorf("expected bool, got %T", raw)
		}
		return value.NewBool(b), nil
	case schema.Int:
		n, err := toInt64(raw)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewInt(n), nil
	case schema.Float:
		n, err := toFloat64(raw)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewFloat(n), nil
	case schema.Decimal:
		d, err := decimal128.Parse(fmt.Sprint(raw))
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDecimal(d), nil
	case schema.Text, schema.Enum:
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("expected string, got %T", raw)
		}
		return value.NewText(s), nil
	case schema.Timestamp:
		t, err := toTimestamp(raw)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewTimestamp(t), nil
	case schema.TimeOfDay:
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("expected HH:MM:SS string, got %T", raw)
		}
		var h, m, sec int
		if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
			return value.Value{}, err
		}
		return value.NewTimeOfDay(value.TimeOfDayValue{Hour: h, Minute: m, Second: sec}), nil
	case schema.Bytes:
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("expected base64 string, got %T", raw)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewBytes(b), nil
	case schema.Ref:
		return r.refValueFromJSON(f, raw)
	case schema.RefList:
		return r.refListValueFromJSON(f, raw)
	default:
		return value.Value{}, fmt.Errorf("unsupported field type %s", f.Type)
	}
}

func (r *Repository) refValueFromJSON(f *schema.Field, raw any) (value.Value, error) {
	if m, ok := raw.(map[string]any); ok {
		target, ok := r.registry.ByName(f.RefTarget)
		if !ok {
			return value.Value{}, fmt.Errorf("unregistered ref target %q", f.RefTarget)
		}
		rec, err := r.rowFromJSON(target, m)
		if err != nil {
			return value.Value{}, err
		}
		if idRaw, ok := m[target.IDField]; ok && idRaw != nil {
			rec[target.IDField] = value.NewID(idRaw)
		}
		return value.NewRecordList([]value.Record{rec}), nil
	}
	return value.NewID(raw), nil
}

func (r *Repository) refListValueFromJSON(f *schema.Field, raw any) (value.Value, error) {
	items, ok := raw.([]any)
	if !ok {
		return value.Value{}, fmt.Errorf("expected a list, got %T", raw)
	}
	target, ok := r.registry.ByName(f.RefTarget)
	if !ok {
		return value.Value{}, fmt.Errorf("unregistered ref target %q", f.RefTarget)
	}

	recs := make([]value.Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			rec, err := r.rowFromJSON(target, m)
			if err != nil {
				return value.Value{}, err
			}
			if idRaw, ok := m[target.IDField]; ok && idRaw != nil {
				rec[target.IDField] = value.NewID(idRaw)
			}
			recs = append(recs, rec)
			continue
		}
		recs = append(recs, value.Record{target.IDField: value.NewID(item)})
	}
	return value.NewRecordList(recs), nil
}

func toInt64(raw any) (int64, error) {
	switch n := raw.(type) {
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
}

func toFloat64(raw any) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
}

func toTimestamp(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case string:
		return now.Parse(v)
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("expected a timestamp string or epoch millis, got %T", raw)
	}
}
