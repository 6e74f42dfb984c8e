package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arifrhm/file-parser-summarizer/internal/jobservice"
	"github.com/arifrhm/file-parser-summarizer/internal/jobstore"
	"github.com/arifrhm/file-parser-summarizer/internal/worker"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := jobstore.NewStore()
	pool := worker.NewDispatcher(2, 16, log)
	pool.Run()
	t.Cleanup(pool.Stop)

	service := jobservice.NewService(store, pool, log)
	handler := NewApplicationHandler(log, service)

	app := fiber.New(fiber.Config{BodyLimit: 2 * jobservice.MaxFileSize})
	app.Get("/", handler.Root)
	app.Get("/health", handler.HealthCheck)
	app.Post("/parse-file", handler.ParseFile)
	app.Get("/jobs", handler.ListJobs)
	app.Get("/jobs/:jobId", handler.GetJobStatus)
	app.Delete("/jobs/:jobId", handler.DeleteJob)
	return app
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/parse-file", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func jobCount(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs", nil), -1)
	require.NoError(t, err)
	body := decodeBody(t, resp)
	return int(body["total_jobs"].(float64))
}

func waitForCompletion(t *testing.T, app *fiber.App, jobID string) map[string]any {
	t.Helper()
	var body map[string]any
	require.Eventually(t, func() bool {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs/"+jobID, nil), -1)
		require.NoError(t, err)
		if resp.StatusCode != http.StatusOK {
			return false
		}
		body = decodeBody(t, resp)
		status := body["status"].(string)
		return status == "completed" || status == "failed"
	}, 3*time.Second, 10*time.Millisecond)
	return body
}

func TestParseFile_AcceptsJSONUpload(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(multipartUpload(t, "records.json", []byte(`[{"a":1},{"a":2}]`)), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "pending", body["status"])
	jobID := body["job_id"].(string)
	require.NotEmpty(t, jobID)

	detail := waitForCompletion(t, app, jobID)
	require.Equal(t, "completed", detail["status"])

	result := detail["result"].(map[string]any)
	keyInfo := result["key_info"].(map[string]any)
	assert.Equal(t, "array", keyInfo["structure_type"])
	assert.Equal(t, float64(2), keyInfo["record_count"])
	assert.NotEmpty(t, result["summary"])
}

func TestParseFile_RejectsUnsupportedExtension(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(multipartUpload(t, "tool.exe", []byte("MZ")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["message"], "sql, json, txt, csv", "Rejection lists the supported kinds")
	assert.Zero(t, jobCount(t, app), "No job is created for a rejected upload")
}

func TestParseFile_RejectsEmptyFile(t *testing.T) {
	app := newTestApp(t)
	before := jobCount(t, app)

	resp, err := app.Test(multipartUpload(t, "empty.csv", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, before, jobCount(t, app), "Job count is unchanged after a rejected upload")
}

func TestParseFile_RejectsOversizedFile(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(multipartUpload(t, "huge.txt", make([]byte, jobservice.MaxFileSize+1)), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["message"], "too large")
}

func TestParseFile_MissingFileField(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/parse-file", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParseFile_MalformedJSONStillCompletes(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(multipartUpload(t, "broken.json", []byte(`{invalid`)), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	jobID := decodeBody(t, resp)["job_id"].(string)

	detail := waitForCompletion(t, app, jobID)
	require.Equal(t, "completed", detail["status"], "Malformed content completes with an error descriptor in the result")

	keyInfo := detail["result"].(map[string]any)["key_info"].(map[string]any)
	assert.Equal(t, "invalid", keyInfo["structure_type"])
	assert.Contains(t, keyInfo["error"], "Invalid JSON")
}

func TestGetJobStatus_UnknownID(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs/does-not-exist", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListJobs_ReturnsSubmittedJobs(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(multipartUpload(t, "a.txt", []byte("hello world")), -1)
	require.NoError(t, err)
	jobID := decodeBody(t, resp)["job_id"].(string)
	waitForCompletion(t, app, jobID)

	listResp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs", nil), -1)
	require.NoError(t, err)
	body := decodeBody(t, listResp)
	assert.Equal(t, float64(1), body["total_jobs"])

	jobs := body["jobs"].([]any)
	require.Len(t, jobs, 1)
	job := jobs[0].(map[string]any)
	assert.Equal(t, jobID, job["job_id"])
	assert.NotNil(t, job["result_preview"], "Completed jobs carry a result preview in list views")
	assert.Nil(t, job["result"], "The full result is not repeated in list views")
}

func TestDeleteJob_RemovesJobOnce(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(multipartUpload(t, "a.txt", []byte("bye")), -1)
	require.NoError(t, err)
	jobID := decodeBody(t, resp)["job_id"].(string)
	waitForCompletion(t, app, jobID)

	del1, err := app.Test(httptest.NewRequest(http.MethodDelete, "/jobs/"+jobID, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, del1.StatusCode)

	del2, err := app.Test(httptest.NewRequest(http.MethodDelete, "/jobs/"+jobID, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, del2.StatusCode, "Deleting the same job twice reports not found")

	status, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs/"+jobID, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status.StatusCode)
}

func TestDeleteJob_UnknownID(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/jobs/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(0), body["active_jobs"])
}

func TestRoot_ListsEndpoints(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, ServiceVersion, body["version"])
	endpoints := body["endpoints"].(map[string]any)
	assert.Contains(t, endpoints, "POST /parse-file")
}

func TestSubmitMany_AllJobsGetDistinctIDs(t *testing.T) {
	app := newTestApp(t)

	ids := make(map[string]bool)
	for i := 0; i < 10; i++ {
		content := []byte(fmt.Sprintf("file number %d\n", i))
		resp, err := app.Test(multipartUpload(t, fmt.Sprintf("f%d.txt", i), content), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
		id := decodeBody(t, resp)["job_id"].(string)
		assert.False(t, ids[id], "Every submission gets a distinct job id")
		ids[id] = true
	}
	assert.Equal(t, 10, jobCount(t, app))
}
