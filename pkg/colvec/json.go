package colvec

import (
	json "github.com/goccy/go-json"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
)

// columnWire is the serialized form of one column: the stable tag plus the
// raw values. The tag picks the concrete variant on decode, so the
// i64/date/datetime distinction survives a round trip.
type columnWire struct {
	Type   string          `json:"type"`
	Values json.RawMessage `json:"values"`
}

// MarshalJSON encodes the set as a name-keyed object of tagged columns.
func (cs *ColumnSet) MarshalJSON() ([]byte, error) {
	wire := make(map[string]columnWire, len(cs.columns))
	for name, col := range cs.columns {
		values, err := json.Marshal(col)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrorTypeSerialization, "column %s", name)
		}
		wire[name] = columnWire{Type: col.TypeName(), Values: values}
	}
	return json.Marshal(wire)
}

// UnmarshalJSON replaces the set with the decoded columns. The equal-length
// invariant is re-checked while rebuilding the set.
func (cs *ColumnSet) UnmarshalJSON(data []byte) error {
	var wire map[string]columnWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(err, errors.ErrorTypeSerialization, "decoding column set")
	}
	decoded := NewColumnSet()
	for name, w := range wire {
		col, err := decodeColumn(w)
		if err != nil {
			return errors.Wrapf(err, errors.ErrorTypeSerialization, "column %s", name)
		}
		if err := decoded.Add(name, col); err != nil {
			return err
		}
	}
	*cs = *decoded
	return nil
}

func decodeColumn(w columnWire) (Column, error) {
	switch w.Type {
	case "u8":
		var c UInt8Column
		return c, json.Unmarshal(w.Values, &c)
	case "i8":
		var c Int8Column
		return c, json.Unmarshal(w.Values, &c)
	case "u16":
		var c UInt16Column
		return c, json.Unmarshal(w.Values, &c)
	case "i16":
		var c Int16Column
		return c, json.Unmarshal(w.Values, &c)
	case "u32":
		var c UInt32Column
		return c, json.Unmarshal(w.Values, &c)
	case "i32":
		var c Int32Column
		return c, json.Unmarshal(w.Values, &c)
	case "u64":
		var c UInt64Column
		return c, json.Unmarshal(w.Values, &c)
	case "i64":
		var c Int64Column
		return c, json.Unmarshal(w.Values, &c)
	case "f32":
		var c Float32Column
		return c, json.Unmarshal(w.Values, &c)
	case "f64":
		var c Float64Column
		return c, json.Unmarshal(w.Values, &c)
	case "date":
		var c DateColumn
		return c, json.Unmarshal(w.Values, &c)
	case "datetime":
		var c DateTimeColumn
		return c, json.Unmarshal(w.Values, &c)
	}
	return nil, errors.Newf(errors.ErrorTypeSerialization, "unknown column type tag %q", w.Type)
}
