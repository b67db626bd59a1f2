package ingestion_engine

import (
	"context"

	"github.com/markdave123-py/Scholara/internal/models"
)

// Runner is what the API and CLI need from a pipeline.
type Runner interface {
	Run(ctx context.Context, set models.SourceSet, obs Observer) (*models.RunReport, error)
	LastIndex() *ChunkIndex
	LastReport() *models.RunReport
}

var _ Runner = (*Pipeline)(nil)
