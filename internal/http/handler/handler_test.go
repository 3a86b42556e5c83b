package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"prezstore/internal/model"
	"prezstore/internal/service"
	serviceMocks "prezstore/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func deckWithOneSlide(id string) *model.Presentation {
	return &model.Presentation{
		ID:     id,
		Title:  "Quarterly Review",
		Slides: []model.Slide{{SlideID: "s-1", Layout: "title"}},
	}
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		decodeBody(t, resp, &body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})

	t.Run("nil db skips the ping", func(t *testing.T) {
		noDB := fiber.New()
		noDB.Get("/health", HealthCheck(nil))

		resp, _ := noDB.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListPresentations(t *testing.T) {
	mockStore := new(serviceMocks.MockPresentationStore)
	app := fiber.New()
	app.Get("/presentations", ListPresentations(mockStore))

	t.Run("success", func(t *testing.T) {
		mockStore.On("ListIDs", mock.Anything).Return([]string{"a", "b"}, nil).Once()
		mockStore.On("Backend").Return(service.BackendDurable).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presentations", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Backend string   `json:"backend"`
			IDs     []string `json:"ids"`
			Total   int      `json:"total"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, "durable", body.Backend)
		assert.Equal(t, []string{"a", "b"}, body.IDs)
		assert.Equal(t, 2, body.Total)
		mockStore.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		mockStore.On("ListIDs", mock.Anything).
			Return(nil, &service.PersistenceError{Op: "list", Err: errors.New("down")}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presentations", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	})
}

func TestCreatePresentation(t *testing.T) {
	mockStore := new(serviceMocks.MockPresentationStore)
	app := fiber.New()
	app.Post("/presentations", CreatePresentation(mockStore))

	t.Run("created", func(t *testing.T) {
		id := uuid.New().String()
		mockStore.On("Save", mock.Anything, mock.AnythingOfType("*model.Presentation")).
			Return(id, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/presentations", fiber.Map{
			"title":  "Quarterly Review",
			"slides": []fiber.Map{{"slide_id": "s-1", "layout": "title"}},
		}))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body struct {
			ID string `json:"id"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, id, body.ID)
		mockStore.AssertExpectations(t)
	})

	t.Run("rejects empty slide list", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/presentations", fiber.Map{
			"title": "No Slides",
		}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "SLIDES_REQUIRED", body.Error.Code)
		mockStore.AssertNotCalled(t, "Save")
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/presentations", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("persistence fault", func(t *testing.T) {
		mockStore.On("Save", mock.Anything, mock.AnythingOfType("*model.Presentation")).
			Return("", &service.PersistenceError{Op: "insert", Err: errors.New("down")}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/presentations", fiber.Map{
			"title":  "Quarterly Review",
			"slides": []fiber.Map{{"slide_id": "s-1"}},
		}))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestGetPresentation(t *testing.T) {
	mockStore := new(serviceMocks.MockPresentationStore)
	app := fiber.New()
	app.Get("/presentations/:id", GetPresentation(mockStore))

	t.Run("found", func(t *testing.T) {
		id := uuid.New().String()
		mockStore.On("Load", mock.Anything, id).Return(deckWithOneSlide(id), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presentations/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body model.Presentation
		decodeBody(t, resp, &body)
		assert.Equal(t, id, body.ID)
		assert.Equal(t, "Quarterly Review", body.Title)
		mockStore.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presentations/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "INVALID_ID", body.Error.Code)
		mockStore.AssertNotCalled(t, "Load")
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockStore.On("Load", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presentations/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdatePresentation(t *testing.T) {
	mockStore := new(serviceMocks.MockPresentationStore)
	app := fiber.New()
	app.Patch("/presentations/:id", UpdatePresentation(mockStore))

	t.Run("success passes patch and audit fields through", func(t *testing.T) {
		id := uuid.New().String()
		updated := deckWithOneSlide(id)
		updated.Title = "Renamed"

		mockStore.On("Update", mock.Anything, id,
			mock.MatchedBy(func(patch model.PresentationPatch) bool {
				return patch.Title != nil && *patch.Title == "Renamed" && patch.Slides == nil
			}),
			"alice", "rename", true,
		).Return(updated, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/presentations/"+id, fiber.Map{
			"title":          "Renamed",
			"updated_by":     "alice",
			"change_summary": "rename",
			"create_version": true,
		}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body model.Presentation
		decodeBody(t, resp, &body)
		assert.Equal(t, "Renamed", body.Title)
		mockStore.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockStore.On("Update", mock.Anything, id, mock.Anything, "", "", false).
			Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/presentations/"+id, fiber.Map{
			"title": "x",
		}))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/presentations/oops", fiber.Map{}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeletePresentation(t *testing.T) {
	mockStore := new(serviceMocks.MockPresentationStore)
	app := fiber.New()
	app.Delete("/presentations/:id", DeletePresentation(mockStore))

	t.Run("deleted", func(t *testing.T) {
		id := uuid.New().String()
		mockStore.On("Delete", mock.Anything, id).Return(true, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/presentations/"+id, nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockStore.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		id := uuid.New().String()
		mockStore.On("Delete", mock.Anything, id).Return(false, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/presentations/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("persistence fault", func(t *testing.T) {
		id := uuid.New().String()
		mockStore.On("Delete", mock.Anything, id).
			Return(false, &service.PersistenceError{Op: "delete", Err: errors.New("down")}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/presentations/"+id, nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestGetVersionHistory(t *testing.T) {
	mockStore := new(serviceMocks.MockPresentationStore)
	app := fiber.New()
	app.Get("/presentations/:id/versions", GetVersionHistory(mockStore))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		history := &service.VersionHistory{
			CurrentVersionID: "v2",
			Versions: []model.VersionMeta{
				{VersionID: "v2", CreatedBy: "bob"},
				{VersionID: "v1", CreatedBy: "alice"},
			},
		}
		mockStore.On("VersionHistory", mock.Anything, id).Return(history, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presentations/"+id+"/versions", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body service.VersionHistory
		decodeBody(t, resp, &body)
		assert.Equal(t, "v2", body.CurrentVersionID)
		assert.Len(t, body.Versions, 2)
	})

	t.Run("backend without version support", func(t *testing.T) {
		id := uuid.New().String()
		mockStore.On("VersionHistory", mock.Anything, id).
			Return(nil, service.ErrNotSupported).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presentations/"+id+"/versions", nil))

		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "NOT_SUPPORTED", body.Error.Code)
	})
}

func TestRestoreVersion(t *testing.T) {
	mockStore := new(serviceMocks.MockPresentationStore)
	app := fiber.New()
	app.Post("/presentations/:id/versions/:versionID/restore", RestoreVersion(mockStore))

	t.Run("backup defaults to true", func(t *testing.T) {
		id := uuid.New().String()
		restored := deckWithOneSlide(id)
		restored.RestoredFrom = "v1"
		mockStore.On("RestoreVersion", mock.Anything, id, "v1", true).
			Return(restored, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/presentations/"+id+"/versions/v1/restore", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body model.Presentation
		decodeBody(t, resp, &body)
		assert.Equal(t, "v1", body.RestoredFrom)
		mockStore.AssertExpectations(t)
	})

	t.Run("backup disabled by body", func(t *testing.T) {
		id := uuid.New().String()
		mockStore.On("RestoreVersion", mock.Anything, id, "v1", false).
			Return(deckWithOneSlide(id), nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/presentations/"+id+"/versions/v1/restore", fiber.Map{
			"create_backup": false,
		}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockStore.AssertExpectations(t)
	})

	t.Run("unknown version", func(t *testing.T) {
		id := uuid.New().String()
		mockStore.On("RestoreVersion", mock.Anything, id, "nope", true).
			Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/presentations/"+id+"/versions/nope/restore", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestReconcilePresentation(t *testing.T) {
	mockStore := new(serviceMocks.MockPresentationStore)
	app := fiber.New()
	app.Post("/presentations/:id/reconcile", ReconcilePresentation(mockStore))

	t.Run("orphans removed and persisted", func(t *testing.T) {
		id := uuid.New().String()
		p := deckWithOneSlide(id)
		p.Slides[0].TextBoxes = []model.Element{
			{ID: "el-keep", ParentSlideID: "s-1"},
			{ID: "el-orphan", ParentSlideID: "s-gone"},
		}

		mockStore.On("Load", mock.Anything, id).Return(p, nil).Once()
		mockStore.On("Update", mock.Anything, id,
			mock.MatchedBy(func(patch model.PresentationPatch) bool {
				return patch.Slides != nil && len((*patch.Slides)[0].TextBoxes) == 1
			}),
			"system", "orphan reconciliation", false,
		).Return(p, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/presentations/"+id+"/reconcile", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Removed int                       `json:"removed"`
			Report  []service.ReconcileReport `json:"report"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, 1, body.Removed)
		require.Len(t, body.Report, 1)
		mockStore.AssertExpectations(t)
	})

	t.Run("clean document skips the write", func(t *testing.T) {
		id := uuid.New().String()
		mockStore.On("Load", mock.Anything, id).Return(deckWithOneSlide(id), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/presentations/"+id+"/reconcile", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Removed int `json:"removed"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, 0, body.Removed)
		mockStore.AssertNotCalled(t, "Update")
	})
}

func TestRouting(t *testing.T) {
	mockStore := new(serviceMocks.MockPresentationStore)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, nil, mockStore)

	t.Run("unknown path", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPut, "/presentations", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
