package main

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/japanese"
)

const kobeExport = "ダウンロードした時刻：2024/06/01 12:00:00\n" +
	"\n" +
	",神戸,神戸,神戸\n" +
	"年月日,平均気温(℃),平均気温(℃),平均気温(℃)\n" +
	"\n" +
	",,品質情報,均質番号\n" +
	"2024/1/1,7.9,8,1\n" +
	"2024/1/2,8.3,8,1\n" +
	"2024/1/3,,0,1\n"

func writeKobe(t *testing.T) string {
	t.Helper()
	b, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(kobeExport))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "kobe.csv")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func TestRenderCommand(t *testing.T) {
	in := writeKobe(t)
	out := filepath.Join(t.TempDir(), "site", "temperature.html")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"render", "--input", in, "--output", out, "--title", "Kobe"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), "Saved interactive plot to "+out)

	page, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Kobe")
	assert.Contains(t, string(page), "2024-01-03")
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&input, "input", "", "")
	cmd.Flags().StringVar(&skipRows, "skip-rows", "", "")
	cmd.Flags().StringVar(&valueColumn, "value-column", "", "")
	t.Cleanup(func() { input, skipRows, valueColumn = "", "", "" })

	require.NoError(t, cmd.Flags().Parse([]string{"--input", "other.csv", "--skip-rows", "", "--value-column", "最高気温(℃)"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "other.csv", cfg.Input)
	assert.Empty(t, cfg.SkipRows)
	assert.Equal(t, "最高気温(℃)", cfg.ValueColumn)
	assert.Equal(t, "年月日", cfg.DateColumn)

	require.NoError(t, cmd.Flags().Parse([]string{"--skip-rows", "a"}))
	_, err = loadConfig(cmd)
	assert.Error(t, err)
}

func TestPreviewServer(t *testing.T) {
	logger = zap.NewNop()
	in := writeKobe(t)

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&input, "input", "", "")
	t.Cleanup(func() { input = "" })
	require.NoError(t, cmd.Flags().Parse([]string{"--input", in}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	service, err := newService(cfg)
	require.NoError(t, err)

	app := newApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"rows":3`)
	assert.Contains(t, string(body), `"valued":2`)
}

func TestServeFailsWhenPortIsTaken(t *testing.T) {
	logger = zap.NewNop()
	in := writeKobe(t)

	ln, err := net.Listen("tcp4", "0.0.0.0:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	taken := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&input, "input", "", "")
	cmd.Flags().StringVar(&port, "port", "", "")
	t.Cleanup(func() { input, port = "", "" })
	require.NoError(t, cmd.Flags().Parse([]string{"--input", in, "--port", taken}))

	done := make(chan error, 1)
	go func() { done <- runServe(cmd, nil) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), ":"+taken)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after failing to bind")
	}
}
