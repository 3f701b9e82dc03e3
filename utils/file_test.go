package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"my cat.jpg":         "my_cat.jpg",
		"../../etc/passwd":   "....etcpasswd",
		`dir\sub file.png`:   "dirsub_file.png",
		"  padded name.gif ": "padded_name.gif",
		"///":                "file",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestGenerateObjectKey(t *testing.T) {
	key, err := GenerateObjectKey(7, "my cat.jpg")
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^datasets/7/images/[0-9a-f-]{36}_my_cat\.jpg$`)
	assert.Regexp(t, pattern, key)

	other, err := GenerateObjectKey(7, "my cat.jpg")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestSupportedImageChecks(t *testing.T) {
	assert.True(t, IsRasterImage("a.JPG"))
	assert.True(t, IsRasterImage("b.webp"))
	assert.False(t, IsRasterImage("c.txt"))

	assert.True(t, IsSupportedImageType("image/png"))
	assert.True(t, IsSupportedImageType("Image/JPEG; charset=binary"))
	assert.False(t, IsSupportedImageType("application/pdf"))
}
