package preamble

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/clpir/endian"
	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
)

func TestNewMetadata_Defaults(t *testing.T) {
	m, err := NewMetadata(1700000000000, "yyyy-MM-dd HH:mm:ss.SSS", "America/Toronto")
	require.NoError(t, err)

	require.Equal(t, format.Version, m.Version())
	require.Equal(t, int64(1700000000000), m.ReferenceTimestamp())
	require.Equal(t, "yyyy-MM-dd HH:mm:ss.SSS", m.TimestampPattern())
	require.Empty(t, m.TimestampPatternSyntax())
	require.Equal(t, "America/Toronto", m.TimeZoneID())
	require.Equal(t, format.BigEndian, m.ByteOrder())
	require.Zero(t, m.DictionaryCapacity())
	require.True(t, m.IsUsingFourByteEncoding())
	require.True(t, endian.IsBigEndian(m.Engine()))
}

func TestNewMetadata_Options(t *testing.T) {
	m, err := NewMetadata(0, "", "UTC",
		WithByteOrder(format.LittleEndian),
		WithDictionaryCapacity(128),
		WithTimestampPatternSyntax("java"),
	)
	require.NoError(t, err)
	require.Equal(t, format.LittleEndian, m.ByteOrder())
	require.Equal(t, 128, m.DictionaryCapacity())
	require.Equal(t, "java", m.TimestampPatternSyntax())
	require.False(t, endian.IsBigEndian(m.Engine()))
}

func TestNewMetadata_InvalidOptions(t *testing.T) {
	_, err := NewMetadata(0, "", "UTC", WithDictionaryCapacity(-1))
	require.ErrorIs(t, err, errs.ErrInvalidDictionarySize)

	_, err = NewMetadata(0, "", "UTC", WithByteOrder(format.ByteOrder(9)))
	require.ErrorIs(t, err, errs.ErrInvalidMetadata)
}

func TestMetadata_Location(t *testing.T) {
	m, err := NewMetadata(0, "", "UTC")
	require.NoError(t, err)

	loc, err := m.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC.String(), loc.String())

	bad, err := NewMetadata(0, "", "Not/AZone")
	require.NoError(t, err)
	_, err = bad.Location()
	require.Error(t, err)
}

func TestMetadata_Equal(t *testing.T) {
	a, _ := NewMetadata(5, "p", "UTC")
	b, _ := NewMetadata(5, "p", "UTC")
	c, _ := NewMetadata(6, "p", "UTC")

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(nil))
	require.Contains(t, a.String(), "tz=UTC")
}
