package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entities-sink/ksink/internal/value"
)

func TestEntityValue(t *testing.T) {
	v := value.Entity("E1")
	require.Equal(t, "E1", v.ID())
	require.Equal(t, value.TagEntity, v.Tag())
	require.Equal(t, "E1", v.ValueAsString())
	require.True(t, v.IsEntity())
	require.Equal(t, value.SQLEntityRef, v.SQLType())
}

func TestStringValue(t *testing.T) {
	v, err := value.New(value.TagString, "V1", "hello")
	require.NoError(t, err)
	require.Equal(t, "V1", v.ID())
	require.Equal(t, "hello", v.ValueAsString())
	require.False(t, v.IsEntity())
	require.Equal(t, value.SQLText, v.SQLType())
}

func TestNumberValueSQLType(t *testing.T) {
	v, err := value.New(value.TagNumber, "V2", "42")
	require.NoError(t, err)
	require.Equal(t, value.SQLInteger, v.SQLType())
}

func TestNewRejectsUnknownTag(t *testing.T) {
	_, err := value.New(value.Tag("bogus"), "V3", "x")
	require.Error(t, err)
}

func TestNewRejectsEmptyID(t *testing.T) {
	_, err := value.New(value.TagString, "", "x")
	require.Error(t, err)
}
