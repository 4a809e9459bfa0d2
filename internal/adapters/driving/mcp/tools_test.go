package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regula/internal/core/domain"
)

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and references", func(t *testing.T) {
		ask := &mockAskService{
			answer: &domain.Answer{
				Question: "居室净高？",
				Text:     "居室净高不应低于2.60m。",
				References: []domain.RetrievedCandidate{
					{
						Similarity: 0.81,
						ArticleID:  "5.1.2",
						SpecName:   "GB50025_2022_宿舍、旅馆建筑项目规范",
						SpecAbbr:   "sslg",
						Content:    "居室净高不应低于2.60m。",
					},
				},
			},
		}
		server, err := NewServer(&Ports{Ask: ask})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "居室净高？"})

		require.NoError(t, err)
		assert.Equal(t, "居室净高？", ask.question)
		assert.Equal(t, "居室净高不应低于2.60m。", output.Answer)
		assert.False(t, output.NotFound)
		require.Len(t, output.References, 1)
		assert.Equal(t, "5.1.2", output.References[0].ArticleID)
		assert.Equal(t, "sslg", output.References[0].SpecAbbr)
		assert.Equal(t, 0.81, output.References[0].Similarity)
	})

	t.Run("not found answer has empty references", func(t *testing.T) {
		ask := &mockAskService{
			answer: &domain.Answer{Text: domain.NotFoundAnswer, References: []domain.RetrievedCandidate{}, NotFound: true},
		}
		server, err := NewServer(&Ports{Ask: ask})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "天气"})

		require.NoError(t, err)
		assert.True(t, output.NotFound)
		assert.Equal(t, domain.NotFoundAnswer, output.Answer)
		assert.NotNil(t, output.References)
		assert.Empty(t, output.References)
	})

	t.Run("returns error on ask failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Ask: &mockAskService{err: errors.New("generation failed")}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "generation failed")
	})
}
