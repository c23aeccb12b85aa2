package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/theimaginaryfoundation/bluum-journal/journal"
)

const requestIDHeader = "X-Request-ID"

// Classifier is the part of journal.Dispatcher the HTTP layer needs.
type Classifier interface {
	Classify(ctx context.Context, req journal.Request) (journal.Result, error)
}

type server struct {
	classifier   Classifier
	catalog      journal.Catalog
	logger       *slog.Logger
	maxBodyBytes int64
	maxHistory   int
}

type classifyBody struct {
	Prompt  string               `json:"prompt"`
	Entry   string               `json:"entry"`
	History []journal.Reflection `json:"history"`
}

type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id"`
}

func (s *server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.accessLog())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/classify", s.handleClassify)
		v1.GET("/moods", s.handleMoods)
	}
	return router
}

func (s *server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"request_id", c.GetString(requestIDHeader),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}
}

func (s *server) handleClassify(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)

	body, err := decodeClassifyBody(c.Request.Body)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if s.maxHistory > 0 && len(body.History) > s.maxHistory {
		s.fail(c, http.StatusBadRequest, "invalid_input", errors.New("history too long"))
		return
	}

	req := journal.Request{Prompt: body.Prompt, Entry: body.Entry, History: body.History}
	logger := s.logger.With("request_id", c.GetString(requestIDHeader))
	res, err := s.classifier.Classify(c.Request.Context(), req)
	if err != nil {
		kind := journal.ErrorKind(err)
		logger.Warn("classify failed", "kind", kind, "error", err)
		s.fail(c, statusFor(err), kind, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// decodeClassifyBody accepts exactly one JSON object and rejects unknown
// fields, the same rules the batch CLI applies to request files.
func decodeClassifyBody(r io.Reader) (classifyBody, error) {
	var body classifyBody
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return classifyBody{}, fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return classifyBody{}, errors.New("decode body: trailing data")
	}
	return body, nil
}

func (s *server) handleMoods(c *gin.Context) {
	moods := s.catalog.Moods()
	out := make([]gin.H, 0, len(moods))
	for _, m := range moods {
		out = append(out, gin.H{"mood": m, "prompts": s.catalog[m]})
	}
	c.JSON(http.StatusOK, gin.H{"moods": out})
}

func (s *server) fail(c *gin.Context, status int, kind string, err error) {
	c.AbortWithStatusJSON(status, errorBody{
		Error:     err.Error(),
		Kind:      kind,
		RequestID: c.GetString(requestIDHeader),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, journal.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, journal.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, journal.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
