package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

func TestLayoutStrategy_Identity(t *testing.T) {
	s := NewLayout()
	assert.Equal(t, "pdf-layout", s.Name())
	assert.Equal(t, domain.MethodLayout, s.Method())
}

func TestLayoutStrategy_OnePagePerSourcePage(t *testing.T) {
	path := writePDF(t, "First page text", "Second page text")

	result, err := NewLayout().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, domain.ShapePaged, result.Shape)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, 1, result.Pages[0].Index)
	assert.Equal(t, 2, result.Pages[1].Index)
	assert.Contains(t, result.Pages[0].Text, "First")
	assert.Contains(t, result.Pages[1].Text, "Second")
}

func TestLayoutStrategy_NotAPDF(t *testing.T) {
	_, err := NewLayout().Extract(context.Background(), writeGarbage(t))

	assert.Error(t, err)
}

func TestLayoutStrategy_CancelledContext(t *testing.T) {
	path := writePDF(t, "text")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLayout().Extract(ctx, path)

	assert.ErrorIs(t, err, context.Canceled)
}
