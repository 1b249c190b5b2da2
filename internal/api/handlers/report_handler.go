package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/andresuchdata/inventra/backend-go/internal/export"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportProvider is what the report endpoints need from the service layer.
type ReportProvider interface {
	GetReport(ctx context.Context, refresh bool) (*domain.Report, error)
	Inventory(ctx context.Context) ([]domain.VariantRecord, error)
	Orders(ctx context.Context) ([]domain.OrderLine, error)
	Locations(ctx context.Context) ([]domain.Location, error)
}

type ReportHandler struct {
	service ReportProvider
}

func NewReportHandler(service ReportProvider) *ReportHandler {
	return &ReportHandler{service: service}
}

// load fetches the report honoring ?refresh= and narrows it to ?brand=.
func (h *ReportHandler) load(c *gin.Context) (*domain.Report, bool) {
	refresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))

	report, err := h.service.GetReport(c.Request.Context(), refresh)
	if err != nil {
		writeError(c, "failed to generate report", err)
		return nil, false
	}
	return filterBrands(report, parseBrands(c)), true
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	report, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.Brands)
}

func (h *ReportHandler) GetSummary(c *gin.Context) {
	report, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"generated_at": report.GeneratedAt,
		"cutoffs":      report.Cutoffs,
		"brands":       len(report.Brands),
		"diagnostics":  report.Diagnostics,
	})
}

func (h *ReportHandler) ExportCSV(c *gin.Context) {
	report, ok := h.load(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, report); err != nil {
		writeError(c, "failed to export csv", err)
		return
	}
	attachment(c, export.FileName(report, "csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	report, ok := h.load(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, report); err != nil {
		writeError(c, "failed to export xlsx", err)
		return
	}
	attachment(c, export.FileName(report, "xlsx"))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ReportHandler) GetInventory(c *gin.Context) {
	records, err := h.service.Inventory(c.Request.Context())
	if err != nil {
		writeError(c, "failed to fetch inventory", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": records,
		"total": len(records),
	})
}

func (h *ReportHandler) GetOrders(c *gin.Context) {
	lines, err := h.service.Orders(c.Request.Context())
	if err != nil {
		writeError(c, "failed to fetch orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": lines,
		"total": len(lines),
	})
}

func (h *ReportHandler) GetLocations(c *gin.Context) {
	locations, err := h.service.Locations(c.Request.Context())
	if err != nil {
		writeError(c, "failed to fetch locations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

func attachment(c *gin.Context, name string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
}

// statusFor maps upstream failures to 502 and timeouts to 504.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInventoryFetch), errors.Is(err, domain.ErrOrdersFetch):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	log.Error().Err(err).Int("status", status).Str("path", c.Request.URL.Path).Msg(message)
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

// parseBrands accepts ?brand=A&brand=B as well as ?brand=A,B.
func parseBrands(c *gin.Context) map[string]struct{} {
	var brands map[string]struct{}
	for _, v := range c.QueryArray("brand") {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			if brands == nil {
				brands = make(map[string]struct{})
			}
			brands[part] = struct{}{}
		}
	}
	return brands
}

// filterBrands returns a shallow copy of report holding only the wanted
// brands. A nil set keeps everything.
func filterBrands(report *domain.Report, brands map[string]struct{}) *domain.Report {
	if brands == nil {
		return report
	}
	filtered := *report
	filtered.Brands = make([]domain.BrandGroup, 0, len(brands))
	for _, g := range report.Brands {
		if _, ok := brands[strings.ToLower(g.Brand)]; ok {
			filtered.Brands = append(filtered.Brands, g)
		}
	}
	return &filtered
}
