package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationAndTableFromSQL(t *testing.T) {
	cases := []struct {
		sql, op, table string
	}{
		{`SELECT * FROM "rental_documents" WHERE id = $1`, "SELECT", "rental_documents"},
		{`INSERT INTO document_counters (gite_id, kind, year, last_number) VALUES (?,?,?,?)`, "INSERT", "document_counters"},
		{`UPDATE "gites" SET nom = $1`, "UPDATE", "gites"},
		{`WITH x AS (SELECT 1) DELETE FROM rental_documents`, "SELECT", "rental_documents"},
		{``, "UNKNOWN", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.op, operationFromSQL(tc.sql), tc.sql)
	}
	assert.Equal(t, "rental_documents", tableFromSQL(cases[0].sql))
	assert.Equal(t, "document_counters", tableFromSQL(cases[1].sql))
	assert.Equal(t, "gites", tableFromSQL(cases[2].sql))
	assert.Equal(t, "", tableFromSQL(cases[4].sql))
}

func TestGormLoggerTraceLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(GormLoggerConfig{
		Base:                 zap.New(core),
		Level:                gormlogger.Warn,
		SlowThreshold:        time.Millisecond,
		IgnoreRecordNotFound: true,
	})
	sql := func() (string, int64) { return `SELECT * FROM "gites"`, 1 }

	l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, "gites", entries[1].ContextMap()["table"])
	}
}
