package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/pipeline"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &common.Config{}
	cfg.Database.Driver = common.DriverSQLite
	cfg.Database.DSN = ":memory:"
	cfg.Server.Port = 3001

	a, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	srv, err := a.NewServer()
	require.NoError(t, err)
	assert.NotNil(t, srv.Echo())

	_, err = a.Processor.Extract(context.Background(), pipeline.Request{FileID: "x", Model: "gemini"})
	require.Error(t, err)
	assert.Equal(t, "GEMINI_API_KEY not configured on server", common.PublicMessage(err, true))
}
