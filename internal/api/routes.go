package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rawblock/forensics-engine/internal/db"
	"github.com/rawblock/forensics-engine/internal/engine"
	"github.com/rawblock/forensics-engine/internal/ingest"
	"github.com/rawblock/forensics-engine/internal/jobs"
	"github.com/rawblock/forensics-engine/internal/scoring"
	"github.com/rawblock/forensics-engine/pkg/models"
)

// defaultAsyncThresholdRows is the row count at or above which a submitted
// batch runs as a background job instead of inline with the request,
// overridable via ASYNC_BATCH_THRESHOLD_ROWS.
const defaultAsyncThresholdRows = 5000

// highRiskBroadcastThreshold gates which flagged accounts are worth a
// live alert, rather than broadcasting every suspicious account.
const highRiskBroadcastThreshold = 70.0

var (
	errMalformedBatch = errors.New("malformed batch payload")
	errMissingColumns = errors.New("CSV upload missing required source/target/amount columns")
)

type APIHandler struct {
	dbStore   *db.PostgresStore
	wsHub     *Hub
	jobRunner *jobs.Runner
	asyncRows int
}

// SetupRouter wires the Gin engine: CORS, the public health/stream/sample
// surface, and the bearer-token-and-rate-limited batch submission
// surface.
func SetupRouter(dbStore *db.PostgresStore, wsHub *Hub) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	asyncRows := defaultAsyncThresholdRows
	if v := os.Getenv("ASYNC_BATCH_THRESHOLD_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			asyncRows = n
		}
	}

	handler := &APIHandler{
		dbStore:   dbStore,
		wsHub:     wsHub,
		asyncRows: asyncRows,
	}
	handler.jobRunner = jobs.NewRunner(handler.onJobComplete)

	// ── Public endpoints (no auth) ─────────────────────────────
	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
		pub.GET("/sample", handler.handleSample)
	}

	// ── Protected endpoints (require bearer token if API_AUTH_TOKEN set) ──
	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	// Rate-limit protected endpoints to 30 req/min per IP (burst=5) —
	// batch submission is the expensive call here.
	auth.Use(NewRateLimiter(30, 5).Middleware())
	{
		auth.POST("/batches", handler.handleSubmitBatch)
		auth.GET("/batches/:id", handler.handleGetBatch)
		auth.GET("/batches/:id/progress", handler.handleBatchProgress)
	}

	return r
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"db":        h.dbStore != nil,
		"synthetic": IsSyntheticEnabled(),
	})
}

func (h *APIHandler) handleSample(c *gin.Context) {
	if !IsSyntheticEnabled() {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Synthetic sample data is disabled",
			"hint":  "Set ENABLE_SYNTHETIC=true to enable sample batches",
		})
		return
	}
	doc, err := engine.Analyze(sampleBatch())
	if err != nil {
		log.Printf("[api] sample batch failed invariant check: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze sample batch"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// handleSubmitBatch accepts either a JSON {"transactions": [...]} body or
// a multipart/form-data CSV upload. Small batches run
// synchronously; batches at or above the configured row threshold are
// handed to the background job runner and the handler responds 202 with
// a batch id.
func (h *APIHandler) handleSubmitBatch(c *gin.Context) {
	raw, err := parseBatchRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batchID := uuid.NewString()
	ctx := c.Request.Context()

	if h.dbStore != nil {
		if err := h.dbStore.CreateBatch(ctx, batchID, len(raw)); err != nil {
			log.Printf("[api] failed to record batch %s: %v", batchID, err)
		}
	}

	if len(raw) < h.asyncRows {
		doc, err := engine.Analyze(raw)
		if err != nil {
			log.Printf("[api] batch %s failed: %v", batchID, err)
			if h.dbStore != nil {
				_ = h.dbStore.MarkBatchFailed(ctx, batchID, err)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal invariant violation during analysis"})
			return
		}
		doc.BatchID = batchID
		doc.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
		h.broadcastHighlights(doc)
		if h.dbStore != nil {
			if err := h.dbStore.SaveResult(ctx, batchID, doc); err != nil {
				log.Printf("[api] failed to persist result for batch %s: %v", batchID, err)
			}
		}
		c.JSON(http.StatusOK, doc)
		return
	}

	if h.dbStore != nil {
		_ = h.dbStore.MarkBatchRunning(ctx, batchID)
	}
	h.jobRunner.Start(batchID, raw, scoring.DefaultPolicy())
	c.JSON(http.StatusAccepted, gin.H{"batch_id": batchID, "status": "running"})
}

func (h *APIHandler) handleGetBatch(c *gin.Context) {
	id := c.Param("id")

	if doc, ok := h.jobRunner.Result(id); ok {
		c.JSON(http.StatusOK, doc)
		return
	}
	if p, ok := h.jobRunner.Progress(id); ok && p.Status == jobs.StatusRunning {
		c.JSON(http.StatusConflict, gin.H{"error": "batch still running", "status": p.Status})
		return
	}

	if h.dbStore != nil {
		if doc, ok, err := h.dbStore.LoadResult(c.Request.Context(), id); err == nil && ok {
			c.JSON(http.StatusOK, doc)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown batch id"})
}

func (h *APIHandler) handleBatchProgress(c *gin.Context) {
	id := c.Param("id")

	if p, ok := h.jobRunner.Progress(id); ok {
		c.JSON(http.StatusOK, p)
		return
	}

	if h.dbStore != nil {
		if info, ok, err := h.dbStore.GetBatchStatus(c.Request.Context(), id); err == nil && ok {
			c.JSON(http.StatusOK, jobs.Progress{BatchID: info.ID, Status: jobs.Status(info.Status), RowCount: info.RowCount, Error: info.Error})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown batch id"})
}

// onJobComplete fires once an async batch job finishes; it persists the
// result and broadcasts live alerts the same way the synchronous path
// does, so dashboard clients see no difference between the two.
func (h *APIHandler) onJobComplete(batchID string, doc *models.ResultDocument, err error) {
	ctx := context.Background()
	if err != nil {
		log.Printf("[api] async batch %s failed: %v", batchID, err)
		if h.dbStore != nil {
			_ = h.dbStore.MarkBatchFailed(ctx, batchID, err)
		}
		return
	}
	doc.BatchID = batchID
	doc.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	h.broadcastHighlights(doc)
	if h.dbStore != nil {
		if err := h.dbStore.SaveResult(ctx, batchID, doc); err != nil {
			log.Printf("[api] failed to persist async result for batch %s: %v", batchID, err)
		}
	}
}

// broadcastHighlights emits ring-detected and high-risk-account events to
// WebSocket subscribers as a batch finishes analysis.
func (h *APIHandler) broadcastHighlights(doc *models.ResultDocument) {
	if h.wsHub == nil {
		return
	}
	for _, r := range doc.FraudRings {
		payload, _ := json.Marshal(gin.H{"type": "ring_detected", "ring": r})
		h.wsHub.Broadcast(payload)
	}
	for _, a := range doc.FlaggedAccounts {
		if a.RiskScore < highRiskBroadcastThreshold {
			continue
		}
		payload, _ := json.Marshal(gin.H{"type": "high_risk_account", "account": a})
		h.wsHub.Broadcast(payload)
	}
}

// parseBatchRequest accepts either a JSON body or a multipart CSV upload
// and returns the raw, not-yet-validated records.
func parseBatchRequest(c *gin.Context) ([]models.RawRecord, error) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return parseCSVUpload(c)
	}

	var body struct {
		Transactions []models.RawRecord `json:"transactions"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, errMalformedBatch
	}
	return body.Transactions, nil
}

func parseCSVUpload(c *gin.Context) ([]models.RawRecord, error) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		return nil, errMalformedBatch
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, errMalformedBatch
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[ingest.ResolveColumn(col)] = i
	}

	srcIdx, srcOK := colIndex["source"]
	tgtIdx, tgtOK := colIndex["target"]
	amtIdx, amtOK := colIndex["amount"]
	if !srcOK || !tgtOK || !amtOK {
		return nil, errMissingColumns
	}
	tsIdx, hasTS := colIndex["timestamp"]

	var rows []models.RawRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errMalformedBatch
		}
		row := models.RawRecord{
			Source: record[srcIdx],
			Target: record[tgtIdx],
			Amount: record[amtIdx],
		}
		if hasTS && tsIdx < len(record) {
			row.Timestamp = record[tsIdx]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
