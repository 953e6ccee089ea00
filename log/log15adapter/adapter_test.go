package log15adapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	log15 "gopkg.in/inconshreveable/log15.v2"

	"github.com/c0nn3r/psycopg3/adapt"
	"github.com/c0nn3r/psycopg3/log/log15adapter"
)

func TestLogger(t *testing.T) {
	var records []*log15.Record
	l := log15.New()
	l.SetHandler(log15.FuncHandler(func(r *log15.Record) error {
		records = append(records, r)
		return nil
	}))
	logger := log15adapter.NewLogger(l)

	logger.Log(context.Background(), adapt.LogLevelInfo, "ready", map[string]interface{}{"oid": 25})
	logger.Log(context.Background(), adapt.LogLevelError, "broken", nil)
	logger.Log(context.Background(), adapt.LogLevelTrace, "deep", nil)

	require.Len(t, records, 3)

	assert.Equal(t, log15.LvlInfo, records[0].Lvl)
	assert.Equal(t, "ready", records[0].Msg)
	assert.Equal(t, []interface{}{"oid", 25}, records[0].Ctx)

	assert.Equal(t, log15.LvlError, records[1].Lvl)
	assert.Equal(t, "broken", records[1].Msg)

	assert.Equal(t, log15.LvlDebug, records[2].Lvl)
	assert.Equal(t, []interface{}{"ADAPT_LOG_LEVEL", adapt.LogLevelTrace}, records[2].Ctx)
}
