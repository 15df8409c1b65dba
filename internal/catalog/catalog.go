// Package catalog decodes part catalogs: the startup catalog file and the
// part objects accepted by the HTTP API.
package catalog

import (
	"context"
	"io"
	"math"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/parts-depot/internal/domain/part"
)

// ReasonRequired is the InvalidInputError reason for an absent field.
const ReasonRequired = "is required"

var (
	minInt = decimal.NewFromInt(math.MinInt)
	maxInt = decimal.NewFromInt(math.MaxInt)
)

// Creator is the subset of part.Store needed to seed a catalog.
type Creator interface {
	Create(ctx context.Context, p part.NewPart) (*part.Part, error)
}

// LoadFile reads a JSON array of parts. Files ending in ".gz" are
// decompressed first.
func LoadFile(path string) ([]part.NewPart, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return Decode(data)
}

// Decode parses a JSON array of part objects and validates every entry.
func Decode(data []byte) ([]part.NewPart, error) {
	var (
		parts []part.NewPart
		idx   int
	)
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := DecodePart(d)
		if err != nil {
			return errors.Wrapf(err, "entry %d", idx)
		}
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "entry %d", idx)
		}
		parts = append(parts, p)
		idx++
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	if err := ExpectEOF(d); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return parts, nil
}

// Seed creates every part in order, so IDs follow the catalog order when the
// store starts empty.
func Seed(ctx context.Context, store Creator, parts []part.NewPart) error {
	for _, p := range parts {
		if _, err := store.Create(ctx, p); err != nil {
			return errors.Wrapf(err, "create part %q", p.Description)
		}
	}
	return nil
}

// DecodePart reads one {description, price, quantity} object. Unknown keys
// are skipped. Missing or mistyped fields yield *part.InvalidInputError;
// range checks are left to part.NewPart.Validate.
func DecodePart(d *jx.Decoder) (part.NewPart, error) {
	var (
		p                           part.NewPart
		hasDesc, hasPrice, hasQuant bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "description":
			if d.Next() != jx.String {
				return &part.InvalidInputError{Field: "description", Reason: "must be a string"}
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			p.Description, hasDesc = v, true
		case "price":
			v, err := DecodeDecimal(d)
			if err != nil {
				return &part.InvalidInputError{Field: "price", Reason: "must be a number"}
			}
			p.Price, hasPrice = v, true
		case "quantity":
			v, err := DecodeCount(d)
			if err != nil {
				return &part.InvalidInputError{Field: "quantity", Reason: "must be an integer"}
			}
			p.Quantity, hasQuant = v, true
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return part.NewPart{}, err
	}

	switch {
	case !hasDesc:
		return part.NewPart{}, &part.InvalidInputError{Field: "description", Reason: ReasonRequired}
	case !hasPrice:
		return part.NewPart{}, &part.InvalidInputError{Field: "price", Reason: ReasonRequired}
	case !hasQuant:
		return part.NewPart{}, &part.InvalidInputError{Field: "quantity", Reason: ReasonRequired}
	}
	return p, nil
}

// DecodeDecimal reads a JSON number as an exact decimal.
func DecodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() != jx.Number {
		return decimal.Decimal{}, errors.New("expected number")
	}
	num, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(string(num))
}

// DecodeInt reads a JSON number that must be integral and fit in int64.
// Values such as 2.0 are accepted; 2.5 and 1e20 are not.
func DecodeInt(d *jx.Decoder) (int64, error) {
	v, err := DecodeDecimal(d)
	if err != nil {
		return 0, err
	}
	if !v.IsInteger() {
		return 0, errors.Errorf("expected integer, got %s", v)
	}
	if !v.BigInt().IsInt64() {
		return 0, errors.Errorf("integer %s out of range", v)
	}
	return v.IntPart(), nil
}

// DecodeCount is DecodeInt bounded to the platform int, for quantities.
func DecodeCount(d *jx.Decoder) (int, error) {
	v, err := DecodeDecimal(d)
	if err != nil {
		return 0, err
	}
	if !v.IsInteger() {
		return 0, errors.Errorf("expected integer, got %s", v)
	}
	if v.LessThan(minInt) || v.GreaterThan(maxInt) {
		return 0, errors.Errorf("integer %s out of range", v)
	}
	return int(v.IntPart()), nil
}

// ExpectEOF fails if anything but whitespace follows the decoded value.
func ExpectEOF(d *jx.Decoder) error {
	if err := d.Skip(); err != io.EOF {
		return errors.New("unexpected trailing data")
	}
	return nil
}
