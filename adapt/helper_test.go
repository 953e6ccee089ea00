package adapt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/c0nn3r/psycopg3/adapt"
	"github.com/c0nn3r/psycopg3/adapttest"
)

var bothFormats = []int16{adapt.TextFormatCode, adapt.BinaryFormatCode}

// newMap builds a Map against a canned PostgreSQL 14 session, with params
// overriding individual server reports.
func newMap(t testing.TB, params map[string]string) *adapt.Map {
	t.Helper()
	m, err := adapt.NewMap(adapt.Config{Server: adapttest.NewServer(params)})
	require.NoError(t, err)
	return m
}

func encode(t testing.TB, m *adapt.Map, value interface{}, format int16) ([]byte, uint32) {
	t.Helper()
	buf, oid, err := m.Encode(value, format)
	require.NoError(t, err)
	return buf, oid
}

func decode(t testing.TB, m *adapt.Map, src []byte, oid uint32, format int16) interface{} {
	t.Helper()
	v, err := m.Decode(src, oid, format)
	require.NoError(t, err)
	return v
}
