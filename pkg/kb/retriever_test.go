package kb

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetrieveAPI struct {
	in  *bedrockagentruntime.RetrieveInput
	out *bedrockagentruntime.RetrieveOutput
	err error
}

func (f *fakeRetrieveAPI) Retrieve(_ context.Context, params *bedrockagentruntime.RetrieveInput, _ ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error) {
	f.in = params
	return f.out, f.err
}

func TestRetrieveMapsResults(t *testing.T) {
	api := &fakeRetrieveAPI{out: &bedrockagentruntime.RetrieveOutput{
		RetrievalResults: []types.KnowledgeBaseRetrievalResult{
			{
				Content: &types.RetrievalResultContent{Text: aws.String("minimum crew rest is 10 hours")},
				Score:   aws.Float64(0.91),
				Location: &types.RetrievalResultLocation{
					S3Location: &types.RetrievalResultS3Location{Uri: aws.String("s3://policies/crew-rest.md")},
				},
			},
			{
				Content: &types.RetrievalResultContent{Text: aws.String("curfew waiver procedure")},
			},
		},
	}}
	r := NewBedrockRetriever(api, "kb-123", slog.New(slog.DiscardHandler))

	excerpts, err := r.Retrieve(context.Background(), "crew rest requirements", 2)
	require.NoError(t, err)

	require.Len(t, excerpts, 2)
	assert.Equal(t, "minimum crew rest is 10 hours", excerpts[0].Text)
	assert.Equal(t, "s3://policies/crew-rest.md", excerpts[0].SourceURI)
	assert.InDelta(t, 0.91, excerpts[0].Score, 0.001)
	assert.Empty(t, excerpts[1].SourceURI)

	assert.Equal(t, "kb-123", aws.ToString(api.in.KnowledgeBaseId))
	assert.Equal(t, int32(2), aws.ToInt32(api.in.RetrievalConfiguration.VectorSearchConfiguration.NumberOfResults))
}

func TestRetrieveDefaultsMaxResults(t *testing.T) {
	api := &fakeRetrieveAPI{out: &bedrockagentruntime.RetrieveOutput{}}
	r := NewBedrockRetriever(api, "kb-123", slog.New(slog.DiscardHandler))

	_, err := r.Retrieve(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, int32(3), aws.ToInt32(api.in.RetrievalConfiguration.VectorSearchConfiguration.NumberOfResults))
}

func TestRetrieveWrapsError(t *testing.T) {
	boom := errors.New("kb unavailable")
	r := NewBedrockRetriever(&fakeRetrieveAPI{err: boom}, "kb-123", slog.New(slog.DiscardHandler))

	_, err := r.Retrieve(context.Background(), "q", 3)
	assert.ErrorIs(t, err, boom)
}
