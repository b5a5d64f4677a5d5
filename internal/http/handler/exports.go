package handler

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"csvexport/internal/exporter"
	"csvexport/internal/model"
	"csvexport/internal/service"
)

// exportBody is the request body shared by the CSV endpoints.
type exportBody struct {
	Records []model.Record `json:"records" swaggertype:"array,object"`
	// Keys selects and orders columns. Omit it to use every field seen.
	Keys     []string `json:"keys,omitempty"`
	FileName string   `json:"file_name,omitempty"`
}

// parseExportBody writes the error response itself and returns ok=false on failure.
func parseExportBody(c *fiber.Ctx) (exporter.Request, bool, error) {
	var body exportBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return exporter.Request{}, false, writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be a JSON object with a records array of objects")
	}
	if body.Records == nil {
		return exporter.Request{}, false, writeError(c, fiber.StatusBadRequest, "RECORDS_REQUIRED", "records is required")
	}
	return exporter.Request{
		Records:  body.Records,
		Keys:     body.Keys,
		FileName: body.FileName,
	}, true, nil
}

// attachmentSaver delivers the file as the response body of c.
func attachmentSaver(c *fiber.Ctx) exporter.FileSaver {
	return exporter.FileSaverFunc(func(_ context.Context, f exporter.File) error {
		c.Attachment(f.FileName)
		c.Set(fiber.HeaderContentType, f.MimeType)
		return c.SendStream(f.Reader(), int(f.Size()))
	})
}

// RenderCSV godoc
// @Summary Render records as CSV text
// @Tags csv
// @Accept json
// @Produce text/csv
// @Param body body exportBody true "Records and optional keys"
// @Success 200 {string} string
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /csv [post]
func RenderCSV(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, ok, err := parseExportBody(c)
		if !ok {
			return err
		}
		text, err := svc.Render(c.UserContext(), req.Records, req.Keys)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, exporter.ContentType)
		return c.SendString(text)
	}
}

// DownloadExport godoc
// @Summary Download records as a CSV attachment
// @Tags exports
// @Accept json
// @Produce text/csv
// @Param body body exportBody true "Records, optional keys and file name"
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /exports/download [post]
func DownloadExport(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, ok, err := parseExportBody(c)
		if !ok {
			return err
		}
		if err := svc.Download(c.UserContext(), req, attachmentSaver(c)); err != nil {
			return writeServiceError(c, err)
		}
		return nil
	}
}

// ArchiveExport godoc
// @Summary Archive records as a stored CSV export
// @Tags exports
// @Accept json
// @Produce json
// @Param body body exportBody true "Records, optional keys and file name"
// @Success 201 {object} model.Export
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /exports [post]
func ArchiveExport(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, ok, err := parseExportBody(c)
		if !ok {
			return err
		}
		exp, err := svc.Archive(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(exp)
	}
}

// ListExports godoc
// @Summary List archived exports
// @Tags exports
// @Produce json
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} service.ExportListResult
// @Failure 400 {object} errorPayload
// @Router /exports [get]
func ListExports(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// exportID returns the validated :id parameter, or ok=false after writing INVALID_ID.
func exportID(c *fiber.Ctx) (string, bool, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false, writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	return id, true, nil
}

// GetExport godoc
// @Summary Get export metadata
// @Tags exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} model.Export
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /exports/{id} [get]
func GetExport(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := exportID(c)
		if !ok {
			return err
		}
		exp, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(exp)
	}
}

// GetExportContent godoc
// @Summary Download a stored export
// @Tags exports
// @Produce text/csv
// @Param id path string true "Export ID"
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /exports/{id}/content [get]
func GetExportContent(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := exportID(c)
		if !ok {
			return err
		}
		rc, exp, err := svc.Open(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Attachment(exp.FileName)
		c.Set(fiber.HeaderContentType, exp.ContentType)
		return c.SendStream(rc, int(exp.Size))
	}
}

// GetExportURL godoc
// @Summary Get a presigned download URL
// @Tags exports
// @Produce json
// @Param id path string true "Export ID"
// @Param expiry query string false "Go duration" default(15m)
// @Success 200 {object} map[string]string
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 501 {object} errorPayload
// @Router /exports/{id}/url [get]
func GetExportURL(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := exportID(c)
		if !ok {
			return err
		}
		expiry, err := time.ParseDuration(c.Query("expiry", service.DefaultPresignExpiry.String()))
		if err != nil || expiry <= 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EXPIRY", "expiry must be a positive duration such as 15m")
		}
		url, err := svc.PresignURL(c.UserContext(), id, expiry)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// DeleteExport godoc
// @Summary Delete an export
// @Tags exports
// @Param id path string true "Export ID"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /exports/{id} [delete]
func DeleteExport(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := exportID(c)
		if !ok {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
