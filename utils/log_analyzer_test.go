package utils

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	orderA = "0b9a3a4e-4f3c-4a61-9d7e-0c1f2a3b4c5d"
	orderB = "7c8d9e0f-1a2b-4c3d-8e4f-5a6b7c8d9e0f"
	payA   = "11111111-2222-4333-8444-555555555555"
)

func writeLog(t *testing.T, dir, level string, day time.Time, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(LogFileName(dir, level, day), []byte(content), 0644))
}

func TestAnalyzeLogs(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	writeLog(t, dir, "info", day,
		"INFO: 2024/03/01 10:00:00 checkout.go:99: Created order "+orderA+" (2500.00 INR) with payment "+payA,
		"INFO: 2024/03/01 10:00:01 service.go:160: Gateway accepted payment "+payA+" (order "+orderA+"), tx_ref JS-20240301-ABCDEF0123456789",
		"INFO: 2024/03/01 10:05:00 retry.go:97: Retry attempt "+payA+" created for order "+orderA+", superseding "+payA,
		"INFO: 2024/03/01 10:05:02 retry.go:94: Retry for order "+orderB+" refused: order has already been paid",
		"INFO: 2024/03/01 10:06:00 resolution.go:80: Payment "+payA+" resolved as SUCCESSFUL for order "+orderA,
		"INFO: 2024/03/01 10:06:30 resolution.go:84: Duplicate notification for payment "+payA+" (SUCCESSFUL), ignored",
		"INFO: 2024/03/01 10:07:00 middleware.go:25: Request: GET /orders/"+orderA+" from 127.0.0.1 - Status: 200 - Duration: 1ms",
	)
	writeLog(t, dir, "error", day,
		"ERROR: 2024/03/01 10:01:00 service.go:150: Gateway rejected payment "+payA+" (order "+orderA+"): card declined",
		"ERROR: 2024/03/01 10:02:00 service.go:150: Gateway rejected payment "+payA+" (order "+orderB+"): card declined",
		"ERROR: 2024/03/01 10:03:00 service.go:140: Gateway initiate failed for payment "+payA+" (order "+orderA+"): payment gateway did not respond in time",
		"WARN: 2024/03/01 10:04:00 resolution.go:51: Data integrity: gateway resolved unknown tx_ref JS-20240301-0000000000000000 as FAILED",
		"ERROR: 2024/03/01 10:08:00 middleware.go:50: Error: boom",
		"Stack Trace:",
		"goroutine 1 [running]:",
	)

	stats, err := AnalyzeLogs(dir, day)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.OrdersCreated)
	assert.Equal(t, 1, stats.GatewayAccepted)
	assert.Equal(t, 1, stats.RetriesStarted)
	assert.Equal(t, 1, stats.RetriesRefused)
	assert.Equal(t, 1, stats.CallbacksApplied)
	assert.Equal(t, 1, stats.CallbacksDuplicated)
	assert.Equal(t, 2, stats.GatewayRejections)
	assert.Equal(t, 1, stats.GatewayTimeouts)
	assert.Equal(t, 1, stats.IntegrityWarnings)
	assert.Equal(t, 4, stats.TotalErrors)
	assert.Equal(t, 4, stats.OrderActivity[orderA])
	assert.Equal(t, 1, stats.OrderActivity[orderB])
	assert.Equal(t, 2, stats.ErrorPatterns["Gateway rejected payment <id> (order <id>): card declined"])

	var buf bytes.Buffer
	stats.WriteReport(&buf, 1)
	report := buf.String()
	assert.Contains(t, report, "Day: 2024-03-01")
	assert.Contains(t, report, "Rejected: 2")
	assert.Contains(t, report, orderA+": 4 events")
	assert.NotContains(t, report, orderB+":")
}

func TestAnalyzeLogsWithoutFiles(t *testing.T) {
	stats, err := AnalyzeLogs(t.TempDir(), time.Now())

	require.NoError(t, err)
	assert.Zero(t, stats.OrdersCreated)
	assert.Zero(t, stats.TotalErrors)
}

func TestLoggerFeedsAnalyzer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLogger(dir))
	t.Cleanup(func() { InfoLogger, WarnLogger, ErrorLogger, DebugLogger = nil, nil, nil, nil })

	LogInfo("Created order %s (%s %s) with payment %s", orderA, "10.00", "INR", payA)
	LogWarn("Data integrity: order %s has no payment attempts", orderA)
	LogError("Gateway rejected payment %s (order %s): %s", payA, orderA, "insufficient funds")
	LogDebug("not counted")

	stats, err := AnalyzeLogs(dir, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OrdersCreated)
	assert.Equal(t, 1, stats.IntegrityWarnings)
	assert.Equal(t, 1, stats.GatewayRejections)
	assert.Equal(t, 1, stats.TotalErrors)
}
