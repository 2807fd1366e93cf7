package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocument_HasFile(t *testing.T) {
	doc := Document{ID: "doc-1", Status: StatusNoFile}
	assert.False(t, doc.HasFile())

	doc.FilePath = "/library/doc-1/book.pdf"
	assert.True(t, doc.HasFile())
}

// TestDocument_Fields tests Document structure fields
func TestDocument_Fields(t *testing.T) {
	now := time.Now()
	doc := Document{
		ID:        "doc-123",
		Title:     "Test Document",
		FilePath:  "/library/doc-123/test.pdf",
		Kind:      KindPDF,
		Content:   "full text",
		Status:    StatusPagesDerived,
		PageCount: 3,
		Strategy:  "pdf-layout",
		CreatedAt: now,
		UpdatedAt: now,
	}

	assert.Equal(t, "doc-123", doc.ID)
	assert.Equal(t, KindPDF, doc.Kind)
	assert.Equal(t, StatusPagesDerived, doc.Status)
	assert.Equal(t, 3, doc.PageCount)
	assert.Equal(t, now, doc.CreatedAt)
}

func TestDocumentStatus_Values(t *testing.T) {
	assert.Equal(t, DocumentStatus("no_file"), StatusNoFile)
	assert.Equal(t, DocumentStatus("pending"), StatusPending)
	assert.Equal(t, DocumentStatus("pages_derived"), StatusPagesDerived)
	assert.Equal(t, DocumentStatus("no_text"), StatusNoText)
}

func TestJobStatus_Done(t *testing.T) {
	assert.False(t, JobPending.Done())
	assert.False(t, JobRunning.Done())
	assert.True(t, JobSucceeded.Done())
	assert.True(t, JobFailed.Done())
}
