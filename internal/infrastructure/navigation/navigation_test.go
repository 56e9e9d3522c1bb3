package navigation

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectNavigator_StagesSeeOther(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	nav := NewRedirectNavigator(c)
	require.NoError(t, nav.Navigate(context.Background(), "https://www.youtube.com/"))
	c.JSON(http.StatusSeeOther, gin.H{"ok": true})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://www.youtube.com/", w.Header().Get("Location"))
	assert.Equal(t, "https://www.youtube.com/", nav.Target())
}

func TestRedirectNavigator_RefusesAfterWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.String(http.StatusOK, "done")

	err := NewRedirectNavigator(c).Navigate(context.Background(), "https://www.youtube.com/")
	assert.Error(t, err)
}

func TestWriterNavigator(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriterNavigator(&buf).Navigate(context.Background(), "https://www.youtube.com/"))
	assert.Equal(t, "open https://www.youtube.com/\n", buf.String())
}
