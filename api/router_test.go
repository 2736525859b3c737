package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/acquire"
	"github.com/yourusername/media-grab-go/internal/app"
	"github.com/yourusername/media-grab-go/internal/domain"
	"github.com/yourusername/media-grab-go/internal/infrastructure"
	"github.com/yourusername/media-grab-go/internal/resolver"
)

func setupTestServer(t *testing.T) (*httptest.Server, *app.App) {
	t.Helper()

	dir := t.TempDir()
	repo, err := infrastructure.NewSQLiteFetchRepository(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	log := zap.NewNop()
	res := resolver.New(map[domain.Platform][]domain.Strategy{}, time.Second, log)
	engine := acquire.NewEngine(nil, dir, log)
	gate := acquire.NewSizeGate(1024*1024, log)
	notifier := infrastructure.NewNotificationService(&domain.NotificationConfig{Method: "log"}, log)
	cfg := &domain.PipelineConfig{WorkerLimit: 1, StreamLimit: 1024, SizeLimit: 1024 * 1024}

	pipeline := app.NewPipeline(res, engine, gate, repo, notifier, nil, log, cfg, filepath.Join(dir, "completed"))
	worker := app.NewWorker(repo, pipeline, &domain.WorkerConfig{CheckInterval: time.Hour}, nil)

	a := &app.App{
		Config:   domain.DefaultConfig(),
		Logger:   log,
		Repo:     repo,
		Resolver: res,
		Pipeline: pipeline,
		Worker:   worker,
	}
	server := httptest.NewServer(SetupRouter(a, log))
	t.Cleanup(server.Close)

	return server, a
}

func TestAPI_SubmitFetch(t *testing.T) {
	server, _ := setupTestServer(t)

	payload := map[string]string{
		"url": "https://www.tiktok.com/@someuser/video/7234567890123456789",
	}
	data, _ := json.Marshal(payload)

	resp, err := http.Post(server.URL+"/api/v1/fetches", "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotEmpty(t, result["id"])
	assert.Equal(t, "unresolved", result["status"])
}

func TestAPI_SubmitFetch_UnsupportedURL(t *testing.T) {
	server, _ := setupTestServer(t)

	data, _ := json.Marshal(map[string]string{"url": "https://example.com/page"})
	resp, err := http.Post(server.URL+"/api/v1/fetches", "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetFetch(t *testing.T) {
	server, a := setupTestServer(t)

	req, err := a.Pipeline.Submit("https://www.tiktok.com/@someuser/video/7234567890123456789")
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/v1/fetches/" + req.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	missing, err := http.Get(server.URL + "/api/v1/fetches/no-such-id")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestAPI_ListAndStats(t *testing.T) {
	server, a := setupTestServer(t)

	_, err := a.Pipeline.Submit("https://www.tiktok.com/@someuser/video/7234567890123456789")
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/v1/fetches")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var requests []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&requests))
	assert.Len(t, requests, 1)

	filtered, err := http.Get(server.URL + "/api/v1/fetches?platform=tiktok")
	require.NoError(t, err)
	defer filtered.Body.Close()
	assert.Equal(t, http.StatusOK, filtered.StatusCode)

	badFilter, err := http.Get(server.URL + "/api/v1/fetches?platform=myspace")
	require.NoError(t, err)
	defer badFilter.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badFilter.StatusCode)

	stats, err := http.Get(server.URL + "/api/v1/fetches/stats")
	require.NoError(t, err)
	defer stats.Body.Close()
	assert.Equal(t, http.StatusOK, stats.StatusCode)

	var statsBody struct {
		History map[string]interface{} `json:"history"`
	}
	require.NoError(t, json.NewDecoder(stats.Body).Decode(&statsBody))
	assert.Equal(t, float64(1), statsBody.History["total"])
}

func TestAPI_DeleteFetch(t *testing.T) {
	server, a := setupTestServer(t)

	req, err := a.Pipeline.Submit("https://www.tiktok.com/@someuser/video/7234567890123456789")
	require.NoError(t, err)

	httpReq, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/fetches/"+req.ID, nil)
	resp, err := http.DefaultClient.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = a.Repo.FindByID(req.ID)
	assert.Error(t, err)
}

func TestAPI_HealthAndReady(t *testing.T) {
	server, a := setupTestServer(t)

	health, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	// Worker not started yet.
	ready, err := http.Get(server.URL + "/ready")
	require.NoError(t, err)
	defer ready.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, ready.StatusCode)

	require.NoError(t, a.Worker.Start(context.Background()))
	defer a.Worker.Stop()

	ready2, err := http.Get(server.URL + "/ready")
	require.NoError(t, err)
	defer ready2.Body.Close()
	assert.Equal(t, http.StatusOK, ready2.StatusCode)
}
