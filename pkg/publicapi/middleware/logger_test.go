//go:build unit || !integration

package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type RequestLoggerTestSuite struct {
	suite.Suite
	logger      zerolog.Logger
	buf         *bytes.Buffer
	globalLevel zerolog.Level
}

func (suite *RequestLoggerTestSuite) SetupTest() {
	suite.buf = &bytes.Buffer{}
	suite.logger = zerolog.New(suite.buf)
	suite.globalLevel = zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func (suite *RequestLoggerTestSuite) TearDownTest() {
	zerolog.SetGlobalLevel(suite.globalLevel)
}

func (suite *RequestLoggerTestSuite) TestLogLevels() {
	for _, tc := range []struct {
		name           string
		logLevel       zerolog.Level
		returnedStatus int
		expectedLevel  string
	}{
		{
			name:           "info for 200",
			logLevel:       zerolog.InfoLevel,
			returnedStatus: http.StatusOK,
			expectedLevel:  "info",
		},
		{
			name:           "warn for 400",
			logLevel:       zerolog.InfoLevel,
			returnedStatus: http.StatusBadRequest,
			expectedLevel:  "warn",
		},
		{
			name:           "error for 500",
			logLevel:       zerolog.InfoLevel,
			returnedStatus: http.StatusInternalServerError,
			expectedLevel:  "error",
		},
		{
			name:           "logLevel:debug return debug for 200",
			logLevel:       zerolog.DebugLevel,
			returnedStatus: http.StatusOK,
			expectedLevel:  "debug",
		},
		{
			name:           "logLevel:debug return warn for 409",
			logLevel:       zerolog.DebugLevel,
			returnedStatus: http.StatusConflict,
			expectedLevel:  "warn",
		},
		{
			name:           "logLevel:error return error for 200",
			logLevel:       zerolog.ErrorLevel,
			returnedStatus: http.StatusOK,
			expectedLevel:  "error",
		},
	} {
		suite.Run(tc.name, func() {
			suite.buf.Reset()
			router := mux.NewRouter()
			router.Use(RequestID, RequestLogger(suite.logger, tc.logLevel))
			router.HandleFunc("/test", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.returnedStatus)
				_, _ = w.Write([]byte("test"))
			})
			rr := httptest.NewRecorder()
			req, _ := http.NewRequestWithContext(context.Background(), "GET", "/test", nil)
			router.ServeHTTP(rr, req)
			suite.Contains(suite.buf.String(), fmt.Sprintf(`"level":"%s"`, tc.expectedLevel))
			suite.Contains(suite.buf.String(), fmt.Sprintf(`"StatusCode":%d`, tc.returnedStatus))
			suite.Contains(suite.buf.String(), `"Size":4`)
		})
	}
}

func (suite *RequestLoggerTestSuite) TestRequestIDIsEchoed() {
	router := mux.NewRouter()
	router.Use(RequestID, RequestLogger(suite.logger, zerolog.InfoLevel))
	router.HandleFunc("/test", func(w http.ResponseWriter, _ *http.Request) {})

	suite.Run("generated", func() {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
		suite.NotEmpty(rr.Header().Get("X-Request-ID"))
	})

	suite.Run("reused", func() {
		suite.buf.Reset()
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "req-42")
		router.ServeHTTP(rr, req)
		suite.Equal("req-42", rr.Header().Get("X-Request-ID"))
		suite.Contains(suite.buf.String(), `"RequestID":"req-42"`)
	})
}

func TestRequestLoggerTestSuite(t *testing.T) {
	suite.Run(t, new(RequestLoggerTestSuite))
}
