package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shuttlecourt/tournament-engine/metrics"
)

func TestObserveCommandIncrementsHandlerOutput(t *testing.T) {
	metrics.ObserveCommand("test_command_ok", nil)
	metrics.ObserveCommand("test_command_err", errors.New("boom"))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, `facade_commands_total{command="test_command_ok",outcome="ok"}`))
	require.True(t, strings.Contains(body, `facade_commands_total{command="test_command_err",outcome="error"}`))
}
