package validation

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestValidateUsername(t *testing.T) {
	valid := []string{"alice", "bob_smith", "j.doe", "abc", strings.Repeat("a", 30)}
	for _, u := range valid {
		assert.NoError(t, ValidateUsername(u), u)
	}

	invalid := []string{"", "ab", strings.Repeat("a", 31), "has space", "emoji😀", "dash-name"}
	for _, u := range invalid {
		assert.Error(t, ValidateUsername(u), u)
	}
}

func TestValidateFullname(t *testing.T) {
	assert.NoError(t, ValidateFullname("Ada Lovelace"))
	assert.NoError(t, ValidateFullname(strings.Repeat("é", 100)))
	assert.Error(t, ValidateFullname("   "))
	assert.Error(t, ValidateFullname(strings.Repeat("x", 101)))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ada@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Ada <ada@example.com>"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@x.io"))

	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct horse"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73)))
	assert.Error(t, ValidatePassword("MyPassword1"))
}

func TestValidateCaptionAndComment(t *testing.T) {
	assert.NoError(t, ValidateCaption("golden hour"))
	assert.ErrorIs(t, ValidateCaption("  \n "), ErrCaptionRequired)
	assert.Error(t, ValidateCaption(strings.Repeat("x", CaptionMaxLength+1)))

	assert.NoError(t, ValidateComment("nice shot"))
	assert.ErrorIs(t, ValidateComment(""), ErrCommentRequired)
	assert.Error(t, ValidateComment(strings.Repeat("x", CommentMaxLength+1)))
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/upload", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(10<<20))

	_, header, err := req.FormFile("file")
	require.NoError(t, err)
	return header
}

func TestValidateFile(t *testing.T) {
	detected, err := ValidateFile(fileHeader(t, "photo.PNG", pngHeader), ImageConstraints)
	require.NoError(t, err)
	assert.Equal(t, "image/png", detected.ContentType)
	assert.Equal(t, ".png", detected.Extension)

	gif, err := ValidateFile(fileHeader(t, "anim.gif", []byte("GIF89a\x01\x00\x01\x00")), ImageConstraints)
	require.NoError(t, err)
	assert.Equal(t, ".gif", gif.Extension)

	_, err = ValidateFile(fileHeader(t, "photo.png", []byte("plain text pretending")), ImageConstraints)
	assert.ErrorContains(t, err, "invalid file type")

	_, err = ValidateFile(fileHeader(t, "photo.exe", pngHeader), ImageConstraints)
	assert.ErrorContains(t, err, "invalid file extension")

	_, err = ValidateFile(fileHeader(t, "photo.png", pngHeader), ImageConstraints.WithMaxSize(10))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
