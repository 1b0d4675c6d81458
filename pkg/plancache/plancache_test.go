package plancache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	h3 "github.com/uber/h3-go/v4"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/colvec"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/tableset"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/testutil"
)

func testPlan(t *testing.T) *tableset.QueryPlan {
	t.Helper()
	ts, err := tableset.NewTableSet("water", nil, []int{2})
	require.NoError(t, err)

	plan, err := tableset.Resolve(ts, 5, []h3.Cell{testutil.Cell(t, 5)}, tableset.PlannerOptions{})
	require.NoError(t, err)
	return plan
}

func TestRoundTripQueryPlan(t *testing.T) {
	for _, codec := range []Codec{CodecZstd, CodecLZ4, CodecNone} {
		cache, err := New(codec)
		require.NoError(t, err, codec)

		var buf bytes.Buffer
		plan := testPlan(t)
		require.NoError(t, cache.Write(&buf, plan), codec)

		var decoded tableset.QueryPlan
		require.NoError(t, cache.Read(&buf, &decoded), codec)
		assert.Equal(t, *plan, decoded, codec)
	}
}

func TestRoundTripTableSet(t *testing.T) {
	ts, err := tableset.NewTableSet("water", []int{6, 8}, []int{3})
	require.NoError(t, err)
	ts.Columns["value"] = "Float32"

	cache, err := New(CodecZstd)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cache.Write(&buf, ts))

	var decoded tableset.TableSet
	require.NoError(t, cache.Read(&buf, &decoded))
	assert.Equal(t, *ts, decoded)
}

func TestRoundTripSchema(t *testing.T) {
	schema := tableset.NewSchema("water").
		AddColumn("value", tableset.ColumnDef{Type: tableset.TypeFloat32, Aggregation: tableset.AggSum})
	schema.BaseResolutions = []int{4, 6}

	cache, err := New(CodecLZ4)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cache.Write(&buf, schema))

	var decoded tableset.Schema
	require.NoError(t, cache.Read(&buf, &decoded))
	assert.Equal(t, *schema, decoded)
}

func TestRoundTripColumnSet(t *testing.T) {
	cs := colvec.NewColumnSet()
	require.NoError(t, cs.Add("h3index", colvec.UInt64Column{
		uint64(testutil.Cell(t, 5)), uint64(testutil.Cell(t, 5)),
	}))
	require.NoError(t, cs.Add("observed_on", colvec.DateColumn{1612137600, 1612224000}))

	for _, codec := range []Codec{CodecZstd, CodecLZ4, CodecNone} {
		cache, err := New(codec)
		require.NoError(t, err, codec)

		var buf bytes.Buffer
		require.NoError(t, cache.Write(&buf, cs), codec)

		var decoded colvec.ColumnSet
		require.NoError(t, cache.Read(&buf, &decoded), codec)
		require.Equal(t, 2, decoded.Len(), codec)
		assert.Equal(t, cs.TypeNames(), decoded.TypeNames(), codec)

		cells, ok := decoded.Column("h3index")
		require.True(t, ok, codec)
		assert.Equal(t, uint64(testutil.Cell(t, 5)), cells.Value(0), codec)

		dates, ok := decoded.Column("observed_on")
		require.True(t, ok, codec)
		assert.Equal(t, "date", dates.TypeName(), codec)
		assert.Equal(t, int64(1612224000), dates.Value(1), codec)
	}
}

func TestReadDetectsCodecFromHeader(t *testing.T) {
	// written with lz4, read through a zstd-configured cache
	writer, err := New(CodecLZ4)
	require.NoError(t, err)
	reader, err := New(CodecZstd)
	require.NoError(t, err)

	var buf bytes.Buffer
	plan := testPlan(t)
	require.NoError(t, writer.Write(&buf, plan))

	var decoded tableset.QueryPlan
	require.NoError(t, reader.Read(&buf, &decoded))
	assert.Equal(t, *plan, decoded)
}

func TestReadRejectsForeignData(t *testing.T) {
	cache, err := New(CodecNone)
	require.NoError(t, err)

	var decoded tableset.QueryPlan
	err = cache.Read(bytes.NewReader([]byte(`{"not":"an entry"}`)), &decoded)
	assert.Error(t, err)

	err = cache.Read(bytes.NewReader(nil), &decoded)
	assert.Error(t, err)
}

func TestNewRejectsUnknownCodec(t *testing.T) {
	_, err := New(Codec("brotli"))
	assert.Error(t, err)
}

func TestStoreAndLoad(t *testing.T) {
	cache, err := New(CodecZstd)
	require.NoError(t, err)

	dir := t.TempDir()
	plan := testPlan(t)
	require.NoError(t, cache.Store(dir, "water_r5.plan", plan))

	var decoded tableset.QueryPlan
	require.NoError(t, cache.Load(dir, "water_r5.plan", &decoded))
	assert.Equal(t, *plan, decoded)
}
