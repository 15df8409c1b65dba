package catalog

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/parts-depot/db"
	"github.com/xenking/parts-depot/internal/domain/part"
)

const sample = `[
	{"description": "Wire", "price": 5.99, "quantity": 5, "sku": "W-1"},
	{"description": "Fuse", "price": 1.25, "quantity": 50}
]`

func TestDecode(t *testing.T) {
	parts, err := Decode([]byte(sample))
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, "Wire", parts[0].Description)
	assert.Equal(t, "5.99", parts[0].Price.String())
	assert.Equal(t, 5, parts[0].Quantity)
	assert.Equal(t, "1.25", parts[1].Price.String())
}

func TestDecode_DefaultCatalog(t *testing.T) {
	parts, err := Decode(db.DefaultCatalog)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, "Engine Oil", parts[2].Description)
}

func TestDecode_Errors(t *testing.T) {
	for _, tt := range []struct {
		name   string
		input  string
		field  string
		reason string
	}{
		{"MissingPrice", `[{"description": "Wire", "quantity": 1}]`, "price", ReasonRequired},
		{"MissingDescription", `[{"price": 1, "quantity": 1}]`, "description", ReasonRequired},
		{"StringPrice", `[{"description": "Wire", "price": "5.99", "quantity": 1}]`, "price", "must be a number"},
		{"FractionalQuantity", `[{"description": "Wire", "price": 1, "quantity": 1.5}]`, "quantity", "must be an integer"},
		{"NumericDescription", `[{"description": 7, "price": 1, "quantity": 1}]`, "description", "must be a string"},
		{"NegativePrice", `[{"description": "Wire", "price": -1, "quantity": 1}]`, "price", "must be a positive number"},
		{"OversizedQuantity", `[{"description": "Wire", "price": 1, "quantity": 18446744073709551616}]`, "quantity", "must be an integer"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			var ie *part.InvalidInputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
			assert.Equal(t, tt.reason, ie.Reason)
			assert.Contains(t, err.Error(), "entry 0")
		})
	}

	t.Run("TrailingData", func(t *testing.T) {
		_, err := Decode([]byte(`[] []`))
		require.ErrorContains(t, err, "trailing data")
	})
	t.Run("NotArray", func(t *testing.T) {
		_, err := Decode([]byte(`{"description": "Wire"}`))
		require.Error(t, err)
	})
}

func TestDecodeInt(t *testing.T) {
	v, err := DecodeInt(jx.DecodeStr(`2.0`))
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = DecodeInt(jx.DecodeStr(`"2"`))
	require.Error(t, err)

	v, err = DecodeInt(jx.DecodeStr(`9223372036854775807`))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), v)

	for _, input := range []string{`9223372036854775808`, `18446744073709551617`, `-9223372036854775809`, `1e30`} {
		_, err = DecodeInt(jx.DecodeStr(input))
		assert.ErrorContains(t, err, "out of range", input)
	}
}

func TestDecodeCount(t *testing.T) {
	v, err := DecodeCount(jx.DecodeStr(`40`))
	require.NoError(t, err)
	assert.Equal(t, 40, v)

	_, err = DecodeCount(jx.DecodeStr(`18446744073709551616`))
	require.ErrorContains(t, err, "out of range")

	_, err = DecodeCount(jx.DecodeStr(`1.5`))
	require.Error(t, err)
}

func TestExpectEOF(t *testing.T) {
	d := jx.DecodeStr(`[1] `)
	require.NoError(t, d.Skip())
	require.NoError(t, ExpectEOF(d))

	d = jx.DecodeStr(`[1] garbage`)
	require.NoError(t, d.Skip())
	require.Error(t, ExpectEOF(d))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("Plain", func(t *testing.T) {
		path := filepath.Join(dir, "parts.json")
		require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

		parts, err := LoadFile(path)
		require.NoError(t, err)
		assert.Len(t, parts, 2)
	})
	t.Run("Gzip", func(t *testing.T) {
		path := filepath.Join(dir, "parts.json.gz")
		f, err := os.Create(path)
		require.NoError(t, err)
		gz := pgzip.NewWriter(f)
		_, err = gz.Write([]byte(sample))
		require.NoError(t, err)
		require.NoError(t, gz.Close())
		require.NoError(t, f.Close())

		parts, err := LoadFile(path)
		require.NoError(t, err)
		assert.Len(t, parts, 2)
	})
	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.json"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

type recordingCreator struct {
	created []part.NewPart
	failAt  int
}

func (r *recordingCreator) Create(_ context.Context, p part.NewPart) (*part.Part, error) {
	if len(r.created) == r.failAt {
		return nil, errors.New("store closed")
	}
	r.created = append(r.created, p)
	return &part.Part{ID: int64(len(r.created)), Description: p.Description}, nil
}

func TestSeed(t *testing.T) {
	parts, err := Decode([]byte(sample))
	require.NoError(t, err)

	t.Run("InOrder", func(t *testing.T) {
		rc := &recordingCreator{failAt: -1}
		require.NoError(t, Seed(context.Background(), rc, parts))
		assert.Equal(t, parts, rc.created)
	})
	t.Run("StopsOnError", func(t *testing.T) {
		rc := &recordingCreator{failAt: 1}
		err := Seed(context.Background(), rc, parts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `create part "Fuse"`)
		assert.Len(t, rc.created, 1)
	})
}
