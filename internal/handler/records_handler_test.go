package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/markbook-app/markbook-api/internal/config"
	"github.com/markbook-app/markbook-api/internal/dto"
	"github.com/markbook-app/markbook-api/internal/handler"
	"github.com/markbook-app/markbook-api/internal/router"
	"github.com/markbook-app/markbook-api/internal/service"
	"github.com/markbook-app/markbook-api/internal/storage"
	"github.com/markbook-app/markbook-api/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		AppName:                "Test",
		AppEnv:                 "test",
		StorageDriver:          config.DriverRedis,
		JWTSecret:              "test-secret",
		SessionTTL:             time.Hour,
		TeacherSecret:          "4321",
		ManagerSecret:          "1234",
		DefaultStudentPassword: "123",
		SeedEnabled:            true,
		SeedToken:              "seed-token",
	}
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	kv := storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mini.Addr()}))

	cfg := testConfig()
	logger := zerolog.Nop()
	ctx := context.Background()

	markStore := store.NewMarkStore(ctx, kv, logger)
	courseworkStore := store.NewCourseworkStore(ctx, kv, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	accessService := service.NewAccessService(cfg, markStore, logger)
	markService := service.NewMarkService(markStore, accessService, validate, cfg.DefaultStudentPassword, logger)
	courseworkService := service.NewCourseworkService(courseworkStore, validate, logger)
	seedService := service.NewSeedService(markStore, cfg.SeedEnabled, cfg.SeedToken, logger)

	app := fiber.New()

	router.Register(app, cfg, router.Dependencies{
		RecordsHandler: handler.NewRecordsHandler(markService, accessService, logger),
		TeacherHandler: handler.NewTeacherHandler(markService, courseworkService, accessService, logger),
		StudentHandler: handler.NewStudentHandler(markService, courseworkService, logger),
		SeedHandler:    handler.NewSeedHandler(seedService, logger),
		Access:         accessService,
	})

	return app
}

func jsonRequest(t *testing.T, method, target string, payload interface{}, token string) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func unlock(t *testing.T, app *fiber.App, path, password string) string {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, "POST", path, dto.UnlockRequest{Password: password}, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool               `json:"success"`
		Data    dto.UnlockResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.NotEmpty(t, body.Data.Token)

	return body.Data.Token
}

func TestRecordsMutationsRequireUnlock(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, "PUT", "/api/v1/records", dto.MarkUpsertRequest{Student: "Ann", Subject: "Math", Mark: 90}, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "DELETE", "/api/v1/records/1", nil, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Reads stay open.
	resp, err = app.Test(jsonRequest(t, "GET", "/api/v1/records", nil, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRecordsUnlockRejectsWrongPassword(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/records/unlock", dto.UnlockRequest{Password: "0000"}, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRecordsManagerFlow(t *testing.T) {
	app := setupApp(t)
	token := unlock(t, app, "/api/v1/records/unlock", "1234")

	// Add two marks, the second being an update of the first.
	resp, err := app.Test(jsonRequest(t, "PUT", "/api/v1/records", dto.MarkUpsertRequest{Student: "Ann", Subject: "Math", Mark: 90}, token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var upsertBody struct {
		Success bool                   `json:"success"`
		Data    dto.MarkUpsertResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &upsertBody)
	require.True(t, upsertBody.Data.Created)
	require.Equal(t, "mark added", upsertBody.Message)
	recordID := upsertBody.Data.Record.ID

	resp, err = app.Test(jsonRequest(t, "PUT", "/api/v1/records", dto.MarkUpsertRequest{Student: "ann", Subject: "MATH", Mark: 75}, token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &upsertBody)
	require.False(t, upsertBody.Data.Created)
	require.Equal(t, recordID, upsertBody.Data.Record.ID)
	require.Equal(t, "mark updated", upsertBody.Message)

	// List reflects one record and one student.
	resp, err = app.Test(jsonRequest(t, "GET", "/api/v1/records", nil, ""))
	require.NoError(t, err)
	var listBody struct {
		Success bool                 `json:"success"`
		Data    dto.MarkListResponse `json:"data"`
	}
	decodeResponse(t, resp, &listBody)
	require.Equal(t, 1, listBody.Data.TotalRecords)
	require.Equal(t, 1, listBody.Data.TotalStudents)
	require.Equal(t, 75, listBody.Data.Records[0].Mark)

	// Search is case-insensitive.
	resp, err = app.Test(jsonRequest(t, "GET", "/api/v1/records/search?student=ANN&subject=math", nil, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "GET", "/api/v1/records/search?student=Ann&subject=History", nil, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Delete returns the removed record; deleting again is a 404.
	resp, err = app.Test(jsonRequest(t, "DELETE", fmt.Sprintf("/api/v1/records/%d", recordID), nil, token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var deleteBody struct {
		Data dto.MarkResponse `json:"data"`
	}
	decodeResponse(t, resp, &deleteBody)
	require.Equal(t, "Ann", deleteBody.Data.Student)

	resp, err = app.Test(jsonRequest(t, "DELETE", fmt.Sprintf("/api/v1/records/%d", recordID), nil, token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRecordsClearAll(t *testing.T) {
	app := setupApp(t)
	token := unlock(t, app, "/api/v1/records/unlock", "1234")

	for _, subject := range []string{"Math", "Physics"} {
		resp, err := app.Test(jsonRequest(t, "PUT", "/api/v1/records", dto.MarkUpsertRequest{Student: "Ann", Subject: subject, Mark: 80}, token))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(jsonRequest(t, "DELETE", "/api/v1/records", nil, token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var clearBody struct {
		Data dto.ClearedResponse `json:"data"`
	}
	decodeResponse(t, resp, &clearBody)
	require.Equal(t, 2, clearBody.Data.Removed)
}

func TestRecordsLockRevokesAccess(t *testing.T) {
	app := setupApp(t)
	token := unlock(t, app, "/api/v1/records/unlock", "1234")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/records/lock", nil, token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "PUT", "/api/v1/records", dto.MarkUpsertRequest{Student: "Ann", Subject: "Math", Mark: 90}, token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRecordsUpsertValidation(t *testing.T) {
	app := setupApp(t)
	token := unlock(t, app, "/api/v1/records/unlock", "1234")

	resp, err := app.Test(jsonRequest(t, "PUT", "/api/v1/records", dto.MarkUpsertRequest{Student: "Ann", Subject: "Math", Mark: 130}, token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "PUT", "/api/v1/records", dto.MarkUpsertRequest{Student: "", Subject: "Math", Mark: 50}, token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
