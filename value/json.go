package value

// ToJSON renders a Value for external consumption: decimals as canonical
// strings, timestamps as milliseconds since the epoch, times-of-day as
// HH:MM:SS, everything else as its native JSON-marshalable form. RecordList
// values render as a list of field-name -> ToJSON maps, one per record.
func (v Value) ToJSON() any {
	switch v.kind {
	case Null:
		return nil
	case Bool:
		return v.b
	case Int:
		return v.i
	case Decimal:
		return v.dec.String()
	case Float:
		return v.f
	case Text:
		return v.s
	case Timestamp:
		return v.t.UnixMilli()
	case TimeOfDay:
		return v.tod.String()
	case Bytes:
		return v.bytes
	case ID:
		return v.id
	case IDList:
		return v.ids
	case RecordList:
		out := make([]any, len(v.recs))
		for i, r := range v.recs {
			m := make(map[string]any, len(r))
			for k, fv := range r {
				m[k] = fv.ToJSON()
			}
			out[i] = m
		}
		return out
	}
	return nil
}
