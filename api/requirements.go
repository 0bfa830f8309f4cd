package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/adamwoolhether/adminapi/client"
	"github.com/adamwoolhether/adminapi/client/download"
	"github.com/adamwoolhether/adminapi/client/stream"
)

// DefaultExportName names an exported table when the response does not.
const DefaultExportName = "process-table.xlsx"

// EnhanceRequest asks the backend to rewrite a requirement.
type EnhanceRequest struct {
	OriginalRequirement  string `json:"originalRequirement" validate:"required,min=5,max=5000"`
	ExpectedProcessCount *int   `json:"expectedProcessCount,omitempty" validate:"omitempty,gt=0"`
}

// Process is one row of a functional process table.
type Process struct {
	TriggerEvent      string `json:"triggerEvent" validate:"required"`
	FunctionalProcess string `json:"functionalProcess" validate:"required"`
	SubProcessDesc    string `json:"subProcessDesc"`
	DataMovementType  string `json:"dataMovementType" validate:"required"`
	DataGroup         string `json:"dataGroup" validate:"required"`
	DataAttributes    string `json:"dataAttributes,omitempty"`
}

// ExportTableRequest is the table rendered by [Requirements.ExportTable].
type ExportTableRequest struct {
	Processes []Process `json:"processes" validate:"required,min=1,dive"`
}

// FunctionalProcess is a process parsed out of an imported workbook.
type FunctionalProcess struct {
	Description string `json:"description" validate:"required"`
}

// ImportResult lists the processes found in an imported workbook.
type ImportResult struct {
	FunctionalProcesses []FunctionalProcess `json:"functionalProcesses"`
}

// Requirements covers the requirement analysis endpoints.
type Requirements struct {
	c *client.Client
}

// Enhance streams a rewritten requirement, reporting each fragment to
// onChunk. When the stream completes without text the original
// requirement is returned. On error the text received so far is
// returned with it.
func (r *Requirements) Enhance(ctx context.Context, req EnhanceRequest, onChunk stream.ChunkFunc) (string, error) {
	text, err := r.c.Stream(ctx, PathEnhance, req, onChunk)
	if err != nil {
		return text, err
	}

	if trimmed := strings.TrimSpace(text); trimmed != "" {
		return trimmed, nil
	}

	return req.OriginalRequirement, nil
}

// ExportTable renders req as a workbook and saves it into dir, returning
// the written path.
func (r *Requirements) ExportTable(ctx context.Context, req ExportTableRequest, dir string, opts ...download.Option) (string, error) {
	d, err := client.NewDescriptor(http.MethodPost, PathExportTable, client.WithPayload(req))
	if err != nil {
		return "", err
	}

	opts = append([]download.Option{download.WithFallbackName(DefaultExportName)}, opts...)

	return r.c.Download(ctx, d, dir, opts...)
}

// ImportProcesses uploads a workbook of functional processes.
func (r *Requirements) ImportProcesses(ctx context.Context, filename string, src io.Reader) (ImportResult, error) {
	if src == nil {
		return ImportResult{}, errors.New("import source must not be nil")
	}

	var res ImportResult
	err := r.c.Post(ctx, PathImportProcesses, nil,
		client.WithMultipartFile("file", filename, src),
		client.WithDestination(&res),
	)
	if err != nil {
		return ImportResult{}, err
	}

	return res, nil
}
