package clickhouse

import (
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/colvec"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
)

// columnBuilder accumulates the values of one result column.
type columnBuilder struct {
	// newTarget returns a fresh scan destination for one row
	newTarget func() interface{}
	// commit appends the scanned value to the column
	commit func(target interface{})
	// build returns the accumulated column
	build func() colvec.Column
}

// builderFor maps a ClickHouse type name onto a column builder.
func builderFor(dbType string) (*columnBuilder, error) {
	switch {
	case dbType == "UInt8":
		data := colvec.UInt8Column{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(uint8) },
			commit:    func(v interface{}) { data = append(data, *v.(*uint8)) },
			build:     func() colvec.Column { return data },
		}, nil
	case dbType == "Int8":
		data := colvec.Int8Column{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(int8) },
			commit:    func(v interface{}) { data = append(data, *v.(*int8)) },
			build:     func() colvec.Column { return data },
		}, nil
	case dbType == "UInt16":
		data := colvec.UInt16Column{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(uint16) },
			commit:    func(v interface{}) { data = append(data, *v.(*uint16)) },
			build:     func() colvec.Column { return data },
		}, nil
	case dbType == "Int16":
		data := colvec.Int16Column{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(int16) },
			commit:    func(v interface{}) { data = append(data, *v.(*int16)) },
			build:     func() colvec.Column { return data },
		}, nil
	case dbType == "UInt32":
		data := colvec.UInt32Column{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(uint32) },
			commit:    func(v interface{}) { data = append(data, *v.(*uint32)) },
			build:     func() colvec.Column { return data },
		}, nil
	case dbType == "Int32":
		data := colvec.Int32Column{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(int32) },
			commit:    func(v interface{}) { data = append(data, *v.(*int32)) },
			build:     func() colvec.Column { return data },
		}, nil
	case dbType == "UInt64":
		data := colvec.UInt64Column{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(uint64) },
			commit:    func(v interface{}) { data = append(data, *v.(*uint64)) },
			build:     func() colvec.Column { return data },
		}, nil
	case dbType == "Int64":
		data := colvec.Int64Column{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(int64) },
			commit:    func(v interface{}) { data = append(data, *v.(*int64)) },
			build:     func() colvec.Column { return data },
		}, nil
	case dbType == "Float32":
		data := colvec.Float32Column{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(float32) },
			commit:    func(v interface{}) { data = append(data, *v.(*float32)) },
			build:     func() colvec.Column { return data },
		}, nil
	case dbType == "Float64":
		data := colvec.Float64Column{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(float64) },
			commit:    func(v interface{}) { data = append(data, *v.(*float64)) },
			build:     func() colvec.Column { return data },
		}, nil
	case dbType == "Date" || dbType == "Date32":
		data := colvec.DateColumn{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(time.Time) },
			commit:    func(v interface{}) { data = append(data, (*v.(*time.Time)).Unix()) },
			build:     func() colvec.Column { return data },
		}, nil
	case strings.HasPrefix(dbType, "DateTime"):
		data := colvec.DateTimeColumn{}
		return &columnBuilder{
			newTarget: func() interface{} { return new(time.Time) },
			commit:    func(v interface{}) { data = append(data, (*v.(*time.Time)).Unix()) },
			build:     func() colvec.Column { return data },
		}, nil
	}
	return nil, errors.Newf(errors.ErrorTypeSerialization, "unsupported column type %s", dbType)
}

// scanColumnSet drains rows into a column set, one typed column per result
// column.
func scanColumnSet(rows driver.Rows) (*colvec.ColumnSet, error) {
	columnTypes := rows.ColumnTypes()
	names := rows.Columns()

	builders := make([]*columnBuilder, len(columnTypes))
	for i, columnType := range columnTypes {
		builder, err := builderFor(columnType.DatabaseTypeName())
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrorTypeSerialization, "column %s", names[i])
		}
		builders[i] = builder
	}

	targets := make([]interface{}, len(builders))
	for rows.Next() {
		for i, builder := range builders {
			targets[i] = builder.newTarget()
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		for i, builder := range builders {
			builder.commit(targets[i])
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := colvec.NewColumnSet()
	for i, builder := range builders {
		if err := out.Add(names[i], builder.build()); err != nil {
			return nil, err
		}
	}
	return out, nil
}
