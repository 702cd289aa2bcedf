package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/godilite/commhealth/internal/config"
	"github.com/godilite/commhealth/internal/engine"
	handler "github.com/godilite/commhealth/internal/grpc"
)

const appSurvey = `
id: comms-2025
title: Communication Health
sections:
  - key: speaking_up
    name: Speaking Up
    questions:
      - {id: su1, text: I raise concerns., type: scale}
`

func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())
	return port
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	surveyPath := filepath.Join(dir, "survey.yaml")
	require.NoError(t, os.WriteFile(surveyPath, []byte(appSurvey), 0o600))

	return &config.Config{
		AppEnv:     "test",
		DBDriver:   "sqlite3",
		DBPath:     filepath.Join(dir, "commhealth.db"),
		CacheTTL:   time.Minute,
		GRPCPort:   freePort(t),
		SurveyPath: surveyPath,
		Thresholds: engine.DefaultThresholds(),
	}
}

func TestNewApp_Errors(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	t.Run("missing survey file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.SurveyPath = filepath.Join(t.TempDir(), "nope.yaml")

		_, err := NewApp(ctx, cfg, logger)
		assert.ErrorContains(t, err, "survey init failed")
	})

	t.Run("unsupported driver", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.DBDriver = "oracle"

		_, err := NewApp(ctx, cfg, logger)
		assert.ErrorContains(t, err, "database init failed")
	})

	t.Run("unreachable redis", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.RedisAddr = fmt.Sprintf("127.0.0.1:%d", freePort(t))

		_, err := NewApp(ctx, cfg, logger)
		assert.ErrorContains(t, err, "cache init failed")
	})
}

func TestApp_RunServesAndShutsDown(t *testing.T) {
	for _, withCache := range []bool{false, true} {
		t.Run(fmt.Sprintf("cache=%v", withCache), func(t *testing.T) {
			cfg := testConfig(t)
			if withCache {
				cfg.RedisAddr = miniredis.RunT(t).Addr()
			}

			a, err := NewApp(context.Background(), cfg, zaptest.NewLogger(t))
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- a.Run(ctx) }()

			conn, err := grpc.NewClient(fmt.Sprintf("127.0.0.1:%d", cfg.GRPCPort),
				grpc.WithTransportCredentials(insecure.NewCredentials()))
			require.NoError(t, err)
			defer conn.Close()

			require.EventuallyWithT(t, func(c *assert.CollectT) {
				resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
					&healthpb.HealthCheckRequest{Service: handler.ServiceName})
				require.NoError(c, err)
				assert.Equal(c, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
			}, 3*time.Second, 50*time.Millisecond)

			client := handler.NewCommHealthClient(conn)
			started, err := client.StartResponse(context.Background(), &handler.StartResponseRequest{Department: "Sales"})
			require.NoError(t, err)
			assert.NotEmpty(t, started.ResponseID)

			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("Run did not return after cancel")
			}
		})
	}
}
