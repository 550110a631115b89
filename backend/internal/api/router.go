package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"symptom-checker/backend/internal/checker"
	"symptom-checker/backend/internal/normalizer"
	"go.uber.org/zap"
)

// Service is the symptom checking surface exposed over HTTP
type Service interface {
	Vocabulary() *normalizer.Vocabulary
	Normalize(ctx context.Context, raw string) normalizer.Resolution
	Check(ctx context.Context, raw []string, topN int) checker.CheckResult
}

// DiseaseStore looks up the full symptom profile of a disease
type DiseaseStore interface {
	GetDiseaseSymptoms(ctx context.Context, disease string) ([]string, error)
}

// Handler serves the symptom API
type Handler struct {
	svc         Service
	diseases    DiseaseStore
	defaultTopN int
	logger      *zap.Logger
}

// NewHandler creates a Handler. defaultTopN applies when a check request omits top_n.
// A nil diseases store disables the disease profile route.
func NewHandler(svc Service, diseases DiseaseStore, defaultTopN int, log *zap.Logger) *Handler {
	return &Handler{svc: svc, diseases: diseases, defaultTopN: defaultTopN, logger: log}
}

// NewRouter builds the gin engine with logging, recovery and CORS
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(h.logger))
	router.Use(gin.Recovery())
	router.Use(cors())

	router.GET("/health", h.health)

	api := router.Group("/api")
	{
		api.GET("/symptoms", h.listSymptoms)
		api.POST("/symptoms/normalize", h.normalize)
		api.POST("/check", h.check)
		if h.diseases != nil {
			api.GET("/diseases/:name/symptoms", h.diseaseSymptoms)
		}
	}
	return router
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"symptoms": h.svc.Vocabulary().Len(),
	})
}

func (h *Handler) listSymptoms(c *gin.Context) {
	entries := h.svc.Vocabulary().Entries()
	c.JSON(http.StatusOK, gin.H{
		"count":    len(entries),
		"symptoms": entries,
	})
}

type normalizeRequest struct {
	Symptoms []string `json:"symptoms" binding:"required,min=1"`
}

func (h *Handler) normalize(c *gin.Context) {
	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	resolutions := make([]normalizer.Resolution, 0, len(req.Symptoms))
	for _, raw := range req.Symptoms {
		resolutions = append(resolutions, h.svc.Normalize(ctx, raw))
	}
	c.JSON(http.StatusOK, gin.H{"resolutions": resolutions})
}

type checkRequest struct {
	Symptoms []string `json:"symptoms"`
	Text     string   `json:"text"` // Comma-separated alternative to Symptoms
	TopN     int      `json:"top_n" binding:"omitempty,min=1,max=50"`
}

func (h *Handler) check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw := append(req.Symptoms, checker.ParseSymptoms(req.Text)...)
	if len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symptoms or text is required"})
		return
	}
	topN := req.TopN
	if topN == 0 {
		topN = h.defaultTopN
	}

	result := h.svc.Check(c.Request.Context(), raw, topN)
	if result.MatchFailed {
		h.logger.Warn("Symptom check returned without disease matches",
			zap.String("request_id", c.GetString(ctxKeyRequestID)),
			zap.Strings("normalized", result.Normalized),
		)
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) diseaseSymptoms(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "disease name is required"})
		return
	}

	symptoms, err := h.diseases.GetDiseaseSymptoms(c.Request.Context(), name)
	if err != nil {
		h.logger.Error("Failed to fetch disease symptoms",
			zap.String("disease", name),
			zap.String("request_id", c.GetString(ctxKeyRequestID)),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch disease symptoms"})
		return
	}
	if len(symptoms) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Disease not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"disease":  name,
		"symptoms": symptoms,
	})
}
