package canonical

import (
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSortsKeys(t *testing.T) {
	obj := Object{
		"zebra":  Int(1),
		"apple":  Int(2),
		"Mango":  Int(3),
		"_under": Int(4),
	}

	data, err := Marshal(obj)
	require.NoError(t, err)

	// Byte order: uppercase before underscore before lowercase.
	assert.Equal(t, `{"Mango":3,"_under":4,"apple":2,"zebra":1}`, string(data))
}

func TestMarshalDeterministicAcrossInsertionOrder(t *testing.T) {
	a := Object{}
	a["title"] = String("write report")
	a["priority"] = Int(3)
	a["storyPoints"] = Float(2.5)

	b := Object{}
	b["storyPoints"] = Float(2.5)
	b["priority"] = Int(3)
	b["title"] = String("write report")

	d1, err := Marshal(a)
	require.NoError(t, err)
	d2, err := Marshal(b)
	require.NoError(t, err)

	assert.Equal(t, d1, d2, "serialization must not depend on insertion order")
}

func TestMarshalNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"int", Int(42), "42"},
		{"negative int", Int(-7), "-7"},
		{"zero", Int(0), "0"},
		{"integral float drops fraction", Float(2.0), "2"},
		{"negative integral float", Float(-3.0), "-3"},
		{"fractional float", Float(2.5), "2.5"},
		{"shortest round-trip", Float(0.1), "0.1"},
		{"large int64", Int(9007199254740993), "9007199254740993"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestMarshalRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := Marshal(Float(f))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	}
}

func TestMarshalStringEscaping(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", `"hello"`},
		{"quote", `say "hi"`, `"say \"hi\""`},
		{"backslash", `a\b`, `"a\\b"`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab and cr", "a\tb\r", `"a\tb\r"`},
		{"control char", "a\x01b", "\"a\\u0001b\""},
		{"unicode passes through", "héllo wörld", `"héllo wörld"`},
		{"no html escaping", "<a>&</a>", `"<a>&</a>"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(String(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestMarshalRejectsInvalidUTF8(t *testing.T) {
	bad := string([]byte{'a', 0xff, 'b'})

	_, err := Marshal(String(bad))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	_, err = Marshal(Object{bad: Int(1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	_, err = Marshal(Array{String("ok"), String(bad)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestMarshalNoWhitespace(t *testing.T) {
	obj := Object{
		"arr":    Array{Int(1), String("two"), Null{}},
		"nested": Object{"b": Bool(true), "a": Bool(false)},
	}

	data, err := Marshal(obj)
	require.NoError(t, err)

	assert.Equal(t, `{"arr":[1,"two",null],"nested":{"a":false,"b":true}}`, string(data))
	assert.True(t, IsCanonical(data))
}

func TestMarshalRejectsUntypedNil(t *testing.T) {
	_, err := Marshal(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestIsCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"compact object", `{"a":1}`, true},
		{"space after colon", `{"a": 1}`, false},
		{"newline", "{\"a\":1,\n\"b\":2}", false},
		{"whitespace inside string ok", `{"a":"b c"}`, true},
		{"escaped quote inside string", `{"a":"b\" c"}`, true},
		{"tab outside string", "{\"a\":\t1}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCanonical([]byte(tt.in)))
		})
	}
}

func TestFromJSONRoundTrip(t *testing.T) {
	// Sloppy input with whitespace and unsorted keys canonicalizes.
	in := []byte(`{
		"zebra": 1,
		"apple": [true, null, "x"],
		"points": 2.0,
		"half": 0.5
	}`)

	v, err := FromJSON(in)
	require.NoError(t, err)

	data, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"apple":[true,null,"x"],"half":0.5,"points":2,"zebra":1}`, string(data))

	// Canonical bytes re-parse and re-marshal to themselves.
	v2, err := FromJSON(data)
	require.NoError(t, err)
	data2, err := Marshal(v2)
	require.NoError(t, err)
	assert.Equal(t, data, data2)
}

func TestFromJSONNumberTypes(t *testing.T) {
	v, err := FromJSON([]byte(`{"i":7,"f":7.5,"e":1e2}`))
	require.NoError(t, err)
	obj, ok := v.(Object)
	require.True(t, ok)

	_, isInt := obj["i"].(Int)
	assert.True(t, isInt, "no-fraction no-exponent decodes as Int")
	_, isFloat := obj["f"].(Float)
	assert.True(t, isFloat)
	_, expFloat := obj["e"].(Float)
	assert.True(t, expFloat, "exponent form decodes as Float")
}

func TestFromJSONRejectsTrailingData(t *testing.T) {
	_, err := FromJSON([]byte(`{"a":1} {"b":2}`))
	require.Error(t, err)
}

func TestObjectFromJSONRejectsNonObject(t *testing.T) {
	_, err := ObjectFromJSON([]byte(`[1,2,3]`))
	require.Error(t, err)
}

func TestMarshalGolden(t *testing.T) {
	obj := Object{
		"title":       String("quarterly \"report\""),
		"priority":    Int(4),
		"storyPoints": Float(1.5),
		"every":       Float(7.0),
		"done":        Bool(false),
		"tags":        Array{String("work"), String("q3")},
		"meta":        Object{"note": String("line1\nline2"), "id": Null{}},
	}

	data, err := Marshal(obj)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "canonical_object", data)
}
