// Package kb retrieves ranked policy excerpts used to ground arbitration.
// Retrieval is strictly best-effort: failures degrade to LLM-only reasoning.
package kb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

// Excerpt is one ranked retrieval result.
type Excerpt struct {
	Text      string
	SourceURI string
	Score     float64
}

// Retriever answers text queries with ranked excerpts.
type Retriever interface {
	Retrieve(ctx context.Context, query string, maxResults int) ([]Excerpt, error)
}

// RetrieveAPI is the subset of the Bedrock agent runtime client used here.
type RetrieveAPI interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// BedrockRetriever queries a Bedrock knowledge base.
type BedrockRetriever struct {
	api             RetrieveAPI
	knowledgeBaseID string
	logger          *slog.Logger
}

func NewBedrockRetriever(api RetrieveAPI, knowledgeBaseID string, logger *slog.Logger) *BedrockRetriever {
	return &BedrockRetriever{
		api:             api,
		knowledgeBaseID: knowledgeBaseID,
		logger:          logger.With("component", "kb_retriever"),
	}
}

func (r *BedrockRetriever) Retrieve(ctx context.Context, query string, maxResults int) ([]Excerpt, error) {
	if maxResults <= 0 {
		maxResults = 3
	}
	out, err := r.api.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(r.knowledgeBaseID),
		RetrievalQuery:  &types.KnowledgeBaseQuery{Text: aws.String(query)},
		RetrievalConfiguration: &types.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &types.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(int32(maxResults)),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("kb retrieve: %w", err)
	}

	excerpts := make([]Excerpt, 0, len(out.RetrievalResults))
	for _, result := range out.RetrievalResults {
		excerpt := Excerpt{}
		if result.Content != nil {
			excerpt.Text = aws.ToString(result.Content.Text)
		}
		if result.Score != nil {
			excerpt.Score = *result.Score
		}
		if result.Location != nil && result.Location.S3Location != nil {
			excerpt.SourceURI = aws.ToString(result.Location.S3Location.Uri)
		}
		excerpts = append(excerpts, excerpt)
	}
	r.logger.Debug("kb retrieval complete", "query", query, "results", len(excerpts))
	return excerpts, nil
}
