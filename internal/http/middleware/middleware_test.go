package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/NadavGB86/event-pragmetizer-oss/common/logger"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/http/middleware"
)

var _ = Describe("Middleware", func() {
	var router *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		router.Use(middleware.Recovery(), middleware.Logger())
	})

	serve := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	It("turns a panic into a 500", func() {
		router.GET("/boom", func(*gin.Context) { panic("boom") })

		w := serve("/boom")

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"internal server error"}`))
	})

	It("keeps a response that already started", func() {
		router.GET("/partial", func(c *gin.Context) {
			c.String(http.StatusOK, "partial")
			panic("late failure")
		})

		w := serve("/partial")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("partial"))
	})

	It("re-raises an aborted handler", func() {
		router.GET("/abort", func(*gin.Context) { panic(http.ErrAbortHandler) })

		Expect(func() { serve("/abort") }).To(PanicWith(http.ErrAbortHandler))
	})

	It("marks the request span failed", func() {
		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		DeferCleanup(func() { _ = tp.Shutdown(context.Background()) })

		router = gin.New()
		router.Use(func(c *gin.Context) {
			ctx, span := tp.Tracer("test").Start(c.Request.Context(), "GET /boom")
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			span.End()
		}, middleware.Recovery())
		router.GET("/boom", func(*gin.Context) { panic(errors.New("nil profile")) })

		w := serve("/boom")

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		ended := recorder.Ended()
		Expect(ended).To(HaveLen(1))
		Expect(ended[0].Status().Code).To(Equal(codes.Error))
		Expect(ended[0].Events()).To(HaveLen(1))
		Expect(ended[0].Events()[0].Name).To(Equal("exception"))
	})

	It("puts the session id into the request context", func() {
		var fields logger.LogFields
		router.GET("/sessions/:id", func(c *gin.Context) {
			fields = logger.GetLogFields(c.Request.Context())
			c.Status(http.StatusNoContent)
		})

		w := serve("/sessions/1790437653459423232")

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(fields.SessionID).NotTo(BeNil())
		Expect(*fields.SessionID).To(Equal(int64(1790437653459423232)))
	})

	It("leaves the context alone for ids that do not parse", func() {
		var fields logger.LogFields
		router.GET("/sessions/:id", func(c *gin.Context) {
			fields = logger.GetLogFields(c.Request.Context())
		})

		serve("/sessions/abc")

		Expect(fields.SessionID).To(BeNil())
	})
})
