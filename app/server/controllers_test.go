package server

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahesh-hegde/vizsql/app/common"
	"github.com/mahesh-hegde/vizsql/app/config"
	"github.com/mahesh-hegde/vizsql/app/dbengine"
)

func newTestController(t *testing.T) *VizController {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.db")

	db, err := sql.Open(dbengine.SQLiteDriverName, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE sales (month TEXT, amount INTEGER);
		INSERT INTO sales (month, amount) VALUES ('jan', 10), ('feb', 20);
	`)
	require.NoError(t, err)

	return NewVizController(&config.VizConfig{
		DataSources: []config.DataSource{
			{Name: "fixture", Kind: common.EngineSQLite, Path: path},
		},
	})
}

func postJSON(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestExportChart_SVG(t *testing.T) {
	vc := newTestController(t)
	c, rec := postJSON(t, `{
		"datasource": "fixture",
		"query": "SELECT month, amount FROM sales",
		"type": "line", "x": "month", "y": ["amount"]
	}`)

	err := vc.ExportChart(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestExportChart_BadFormatIsNotCommittedAs200(t *testing.T) {
	vc := newTestController(t)
	c, rec := postJSON(t, `{
		"datasource": "fixture",
		"query": "SELECT month, amount FROM sales",
		"type": "line", "x": "month", "y": ["amount"],
		"format": "bmp"
	}`)

	err := vc.ExportChart(c)
	require.Error(t, err)

	// The render failure must surface as an error status; nothing may have
	// been written to the response beforehand.
	assert.False(t, c.Response().Committed)
	assert.Zero(t, rec.Body.Len())
	uve, ok := err.(*common.UserVisibleError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, uve.HttpCode)
}

func TestGetTables_UnknownDataSource(t *testing.T) {
	vc := newTestController(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("name")
	c.SetParamValues("nope")

	err := vc.GetTables(c)
	require.Error(t, err)
	uve, ok := err.(*common.UserVisibleError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, uve.HttpCode)
	assert.Contains(t, uve.Message, "could not list tables")
	assert.Contains(t, uve.Message, "nope")
}
