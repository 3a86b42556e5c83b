package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"prezstore/internal/model"
	"prezstore/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay thin: decode, call the storage façade, map errors. db may be nil when
// the filesystem backend is active.
func RegisterRoutes(app *fiber.App, db *sql.DB, store service.PresentationStore) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/presentations", ListPresentations(store))
	app.Post("/presentations", CreatePresentation(store))
	app.Get("/presentations/:id", GetPresentation(store))
	app.Patch("/presentations/:id", UpdatePresentation(store))
	app.Delete("/presentations/:id", DeletePresentation(store))

	app.Get("/presentations/:id/versions", GetVersionHistory(store))
	app.Post("/presentations/:id/versions/:versionID/restore", RestoreVersion(store))
	app.Post("/presentations/:id/reconcile", ReconcilePresentation(store))
}

// HealthCheck reports readiness. With a durable backend it checks database
// connectivity; the filesystem backend has no dependency to probe.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListPresentations enumerates all presentation ids plus the active backend.
func ListPresentations(store service.PresentationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids, err := store.ListIDs(c.UserContext())
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(fiber.Map{
			"backend": store.Backend(),
			"ids":     ids,
			"total":   len(ids),
		})
	}
}

// CreatePresentation stores a new presentation. The id and created_at of the
// request body are ignored; the storage layer assigns them.
func CreatePresentation(store service.PresentationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p model.Presentation
		if err := c.BodyParser(&p); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if len(p.Slides) == 0 {
			return writeError(c, fiber.StatusBadRequest, "SLIDES_REQUIRED", "a presentation needs at least one slide")
		}

		id, err := store.Save(c.UserContext(), &p)
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "presentation": p})
	}
}

// GetPresentation returns one presentation by id.
func GetPresentation(store service.PresentationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		p, err := store.Load(c.UserContext(), id)
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(p)
	}
}

// updatePresentationRequest carries the typed patch plus audit fields.
type updatePresentationRequest struct {
	model.PresentationPatch
	UpdatedBy     string `json:"updated_by"`
	ChangeSummary string `json:"change_summary"`
	CreateVersion bool   `json:"create_version"`
}

// UpdatePresentation shallow-merges the patch into the stored document.
func UpdatePresentation(store service.PresentationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req updatePresentationRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		p, err := store.Update(c.UserContext(), id, req.PresentationPatch, req.UpdatedBy, req.ChangeSummary, req.CreateVersion)
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(p)
	}
}

// DeletePresentation removes a presentation and its version history.
func DeletePresentation(store service.PresentationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		found, err := store.Delete(c.UserContext(), id)
		if err != nil {
			return writeStoreError(c, err)
		}
		if !found {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "presentation not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetVersionHistory lists a presentation's versions newest-first.
func GetVersionHistory(store service.PresentationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		history, err := store.VersionHistory(c.UserContext(), id)
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(history)
	}
}

type restoreVersionRequest struct {
	CreateBackup *bool `json:"create_backup"`
}

// RestoreVersion overwrites the live state with a version snapshot. A
// pre-restore backup is taken unless the body disables it.
func RestoreVersion(store service.PresentationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		versionID := c.Params("versionID")

		createBackup := true
		var req restoreVersionRequest
		if err := c.BodyParser(&req); err == nil && req.CreateBackup != nil {
			createBackup = *req.CreateBackup
		}

		p, err := store.RestoreVersion(c.UserContext(), id, versionID, createBackup)
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(p)
	}
}

// ReconcilePresentation drops orphaned overlay elements after structural
// edits (slide deletion or reorder) and persists the cleaned document.
func ReconcilePresentation(store service.PresentationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		p, err := store.Load(c.UserContext(), id)
		if err != nil {
			return writeStoreError(c, err)
		}

		removed, report := service.ReconcileOrphans(p)
		if removed > 0 {
			slides := p.Slides
			p, err = store.Update(c.UserContext(), id, model.PresentationPatch{Slides: &slides}, "system", "orphan reconciliation", false)
			if err != nil {
				return writeStoreError(c, err)
			}
		}

		return c.JSON(fiber.Map{
			"presentation": p,
			"removed":      removed,
			"report":       report,
		})
	}
}
