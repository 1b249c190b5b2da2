package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitKey(t *testing.T) {
	dir, name := splitKey("/reports/2024-06-15/brand-report.csv")
	assert.Equal(t, "reports/2024-06-15", dir)
	assert.Equal(t, "brand-report.csv", name)

	dir, name = splitKey("report.json")
	assert.Empty(t, dir)
	assert.Equal(t, "report.json", name)
}

func TestChildQuery(t *testing.T) {
	assert.Equal(t,
		`'root' in parents and name='L\'Oréal' and trashed=false and mimeType='application/vnd.google-apps.folder'`,
		childQuery("root", "L'Oréal", folderMimeType),
	)
	assert.Equal(t, `'abc' in parents and name='a.csv' and trashed=false`, childQuery("abc", "a.csv", ""))
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `a\\b\'c`, escapeQuery(`a\b'c`))
}

func TestNewPublisherRejectsBadCredentials(t *testing.T) {
	_, err := NewPublisher(t.Context(), []byte("not json"), "folder")
	assert.Error(t, err)
}
