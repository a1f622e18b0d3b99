package interfaces

import (
	"context"

	"github.com/pmsync-dev/pmsync/pkg/domain/model"
)

// AnalysisEngine turns a batch of unstructured inputs into change
// proposals. The engine is opaque: the core neither inspects nor trusts
// its reasoning, only validates its structured output. Callers apply a
// bounded timeout via ctx.
type AnalysisEngine interface {
	Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisOutput, error)
}
