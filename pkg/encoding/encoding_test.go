package encoding_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrohde/dirac/pkg/encoding"
	"github.com/thomasrohde/dirac/pkg/evaluator"
	"github.com/thomasrohde/dirac/pkg/parser"
)

func eval(t *testing.T, src string) *evaluator.Value {
	t.Helper()
	expr, err := parser.Parse(src, "")
	require.NoError(t, err)
	v, err := evaluator.Evaluate(expr, evaluator.Options{})
	require.NoError(t, err)
	return v
}

func TestJSONLayout(t *testing.T) {
	b, err := encoding.MarshalJSON(eval(t, "|1><0|"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"matrix","shape":[2,2],"data":[[0,0],[0,0],[1,0],[0,0]]}`, string(b))
}

func TestJSONDecode(t *testing.T) {
	v := eval(t, "-2 |01>'")
	b, err := encoding.MarshalJSON(v)
	require.NoError(t, err)
	got, err := encoding.UnmarshalJSON(b)
	require.NoError(t, err)
	assert.Equal(t, v.Kind, got.Kind)
	assert.True(t, v.Tensor.Equal(got.Tensor))
}

func TestMsgpack(t *testing.T) {
	v := eval(t, "(|0> + |1>) / ||0> + |1>|")
	b, err := encoding.MarshalMsgpack(v)
	require.NoError(t, err)
	got, err := encoding.UnmarshalMsgpack(b)
	require.NoError(t, err)
	assert.Equal(t, evaluator.KindKet, got.Kind)
	assert.True(t, v.Tensor.Equal(got.Tensor))
}

func TestDecodeRejectsBadDocuments(t *testing.T) {
	_, err := encoding.UnmarshalJSON([]byte(`{"kind":"spinor","shape":[1,1],"data":[[1,0]]}`))
	assert.ErrorContains(t, err, "unknown kind")

	_, err = encoding.UnmarshalJSON([]byte(`{"kind":"ket","shape":[2,1],"data":[[1,0]]}`))
	assert.Error(t, err)

	_, err = encoding.UnmarshalJSON([]byte(`not json`))
	assert.ErrorContains(t, err, "decode json")

	_, err = encoding.UnmarshalMsgpack([]byte{0xc1})
	assert.ErrorContains(t, err, "decode msgpack")
}

func TestText(t *testing.T) {
	v := eval(t, "(|0> + |1>) / ||0> + |1>|")
	assert.Equal(t, "0.7071067811865475+0i\n0.7071067811865475+0i", encoding.Text(v))
	assert.Equal(t, "-1+0i", encoding.Text(eval(t, "-<1|1>")))
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	encoding.WriteTable(&buf, eval(t, "|1><0|"))
	out := buf.String()
	assert.Contains(t, out, "1+0i")
	assert.Contains(t, out, "matrix (2,2)")
	assert.Equal(t, 1, strings.Count(out, "1+0i"))
	assert.Equal(t, 3, strings.Count(out, "0+0i"))
}

func TestWrite(t *testing.T) {
	v := eval(t, "<0|0>")
	for _, format := range encoding.Formats {
		var buf bytes.Buffer
		require.NoError(t, encoding.Write(&buf, format, v), format)
		assert.NotZero(t, buf.Len(), format)
	}

	var buf bytes.Buffer
	require.NoError(t, encoding.Write(&buf, "json", v))
	var doc encoding.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, [2]int{1, 1}, doc.Shape)

	assert.Error(t, encoding.Write(&buf, "yaml", v))
}
