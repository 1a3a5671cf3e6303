package prometheus

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/sealwatch/slasher/runtime"
	"github.com/sealwatch/slasher/testing/require"
	"github.com/sirupsen/logrus"
)

type logger interface {
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
}

func TestLogrusCollector(t *testing.T) {
	service := NewService("", runtime.NewServiceRegistry())
	hook := NewLogrusCollector()
	logrus.AddHook(hook)

	tests := []struct {
		name   string
		count  int
		prefix string
		level  logrus.Level
	}{
		{"info message with empty prefix", 3, "", logrus.InfoLevel},
		{"warn message with empty prefix", 2, "", logrus.WarnLevel},
		{"error message with empty prefix", 1, "", logrus.ErrorLevel},
		{"error message with prefix", 1, "collector-test", logrus.ErrorLevel},
		{"info message with prefix", 3, "collector-test", logrus.InfoLevel},
		{"warn message with prefix", 2, "collector-test", logrus.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix := defaultPrefix
			if tt.prefix != "" {
				prefix = tt.prefix
			}
			before := getValueFor(t, getMetrics(t, service), prefix, tt.level)
			for i := 0; i < tt.count; i++ {
				if tt.prefix != "" {
					logExampleMessage(logrus.WithField("prefix", tt.prefix), tt.level)
					continue
				}
				logExampleMessage(logrus.StandardLogger(), tt.level)
			}
			after := getValueFor(t, getMetrics(t, service), prefix, tt.level)
			if after-before != tt.count {
				t.Errorf("Expecting %d and receive %d", tt.count, after-before)
			}
		})
	}
}

func TestLogrusCollector_NonStringPrefix(t *testing.T) {
	hook := NewLogrusCollector()
	err := hook.Fire(logrus.WithField("prefix", 7))
	require.ErrorContains(t, "prefix is not a string", err)
}

func getMetrics(t *testing.T, s *Service) []string {
	rr := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return strings.Split(rr.Body.String(), "\n")
}

func getValueFor(t *testing.T, metrics []string, prefix string, level logrus.Level) int {
	// Expect line with this pattern:
	//   # HELP slasher_log_entries_total Total number of log messages.
	//   # TYPE slasher_log_entries_total counter
	//   slasher_log_entries_total{level="error",prefix="global"} 1
	pattern := fmt.Sprintf("slasher_log_entries_total{level=\"%s\",prefix=\"%s\"}", level, prefix)
	for _, line := range metrics {
		if strings.HasPrefix(line, pattern) {
			parts := strings.Split(line, " ")
			count, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				t.Errorf("Failed to convert metric counter to float: %s", err)
			}
			return int(count)
		}
	}
	return 0
}

func logExampleMessage(logger logger, level logrus.Level) {
	switch level {
	case logrus.InfoLevel:
		logger.Info("Info message")
	case logrus.WarnLevel:
		logger.Warn("Warning message!")
	case logrus.ErrorLevel:
		logger.Error("Error message!!")
	}
}
