package server

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mahesh-hegde/vizsql/app/common"
	"github.com/mahesh-hegde/vizsql/app/config"
	"github.com/mahesh-hegde/vizsql/app/dbengine"
	"github.com/mahesh-hegde/vizsql/app/distribution"
	"github.com/mahesh-hegde/vizsql/app/plot"
	"github.com/mahesh-hegde/vizsql/app/render"
	"github.com/mahesh-hegde/vizsql/app/schema"
	"github.com/mahesh-hegde/vizsql/app/series"
)

type VizController struct {
	conf  *config.VizConfig
	intro *schema.Introspector
}

func NewVizController(conf *config.VizConfig) *VizController {
	return &VizController{
		conf:  conf,
		intro: schema.NewIntrospector(time.Duration(conf.SchemaCacheSeconds) * time.Second),
	}
}

func (vc *VizController) dataSource(name string) (*config.DataSource, error) {
	ds, ok := vc.conf.DataSource(name)
	if !ok {
		return nil, common.NewUserVisibleError(http.StatusNotFound, "unknown data source: "+name)
	}
	return ds, nil
}

// queryCtx applies the data source's per-query deadline on top of the
// request context.
func queryCtx(c echo.Context, ds *config.DataSource) (context.Context, context.CancelFunc) {
	ctx := c.Request().Context()
	if ds.TimeoutSeconds > 0 {
		return context.WithTimeout(ctx, time.Duration(ds.TimeoutSeconds)*time.Second)
	}
	return context.WithCancel(ctx)
}

type dataSourceInfo struct {
	Name     string            `json:"name"`
	Kind     common.EngineKind `json:"type"`
	Database string            `json:"database"`
}

func (vc *VizController) ListDataSources(c echo.Context) error {
	out := make([]dataSourceInfo, 0, len(vc.conf.DataSources))
	for _, ds := range vc.conf.DataSources {
		out = append(out, dataSourceInfo{Name: ds.Name, Kind: ds.Kind, Database: ds.Database})
	}
	return c.JSON(http.StatusOK, out)
}

func (vc *VizController) GetTables(c echo.Context) error {
	ds, err := vc.dataSource(c.Param("name"))
	if err != nil {
		return common.WrapErrorForResponse(err, "could not list tables")
	}
	ctx, cancel := queryCtx(c, ds)
	defer cancel()
	res, err := vc.intro.FetchTables(ctx, ds)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (vc *VizController) GetTableSummary(c echo.Context) error {
	ds, err := vc.dataSource(c.Param("name"))
	if err != nil {
		return common.WrapErrorForResponse(err, "could not describe table")
	}
	ctx, cancel := queryCtx(c, ds)
	defer cancel()
	res, err := vc.intro.FetchTableSummary(ctx, c.Param("table"), ds)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

type queryRequest struct {
	DataSource string `json:"datasource"`
	Query      string `json:"query"`
}

func (vc *VizController) RunQuery(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Query == "" {
		return common.NewUserVisibleError(http.StatusBadRequest, "query is required")
	}
	ds, err := vc.dataSource(req.DataSource)
	if err != nil {
		return err
	}
	ctx, cancel := queryCtx(c, ds)
	defer cancel()
	res, err := dbengine.Execute(ctx, ds, req.Query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

type chartRequest struct {
	queryRequest
	Type     string   `json:"type"`
	Stacking string   `json:"stacking"`
	GroupBy  string   `json:"groupBy"`
	X        string   `json:"x"`
	Y        []string `json:"y"`

	// "normal" overlays the proportion sampling distribution instead of
	// charting the raw series.
	Transform string `json:"transform"`

	Format render.Format `json:"format"`
}

type chartResponse struct {
	Data          []plot.Descriptor `json:"data"`
	Layout        *plot.Layout      `json:"layout"`
	RuntimeMillis int64             `json:"runtime_millis"`
}

func (vc *VizController) buildDescriptors(c echo.Context, req *chartRequest) (*chartResponse, error) {
	if req.Query == "" {
		return nil, common.NewUserVisibleError(http.StatusBadRequest, "query is required")
	}
	ds, err := vc.dataSource(req.DataSource)
	if err != nil {
		return nil, err
	}
	ctx, cancel := queryCtx(c, ds)
	defer cancel()
	res, err := dbengine.Execute(ctx, ds, req.Query)
	if err != nil {
		return nil, err
	}

	spec := &series.ChartSpec{
		Type:     req.Type,
		Stacking: req.Stacking,
		GroupBy:  req.GroupBy,
		X:        req.X,
		Y:        req.Y,
	}
	spec.FromResult(res)

	list, err := series.Generate(spec)
	if err != nil {
		return nil, common.NewUserVisibleError(http.StatusBadRequest, err.Error())
	}
	if req.Transform == "normal" {
		list, err = distribution.EstimateAll(list)
		if err != nil {
			return nil, err
		}
	}

	descs, layout, err := plot.Build(spec, list)
	if err != nil {
		return nil, common.NewUserVisibleError(http.StatusBadRequest, err.Error())
	}
	return &chartResponse{Data: descs, Layout: layout, RuntimeMillis: res.RuntimeMillis}, nil
}

func (vc *VizController) BuildChart(c echo.Context) error {
	var req chartRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	resp, err := vc.buildDescriptors(c, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (vc *VizController) ExportChart(c echo.Context) error {
	var req chartRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	resp, err := vc.buildDescriptors(c, &req)
	if err != nil {
		return err
	}
	format := req.Format
	if format == "" {
		format = render.FormatSVG
	}
	// Render into a buffer before touching the response, so a failure is
	// still reportable as an error status instead of a committed 200.
	var buf bytes.Buffer
	if err := render.Export(resp.Data, resp.Layout, format, &buf); err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, err.Error())
	}
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}
