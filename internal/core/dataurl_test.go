package core_test

import (
	"encoding/base64"
	"testing"

	"quote-drafter/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURL(t *testing.T) {
	d, err := core.ParseDataURL(" data:image/JPG;base64," + base64.StdEncoding.EncodeToString([]byte{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", d.MIME)
	assert.Equal(t, []byte{1, 2}, d.Data)
	assert.Equal(t, "data:image/jpeg;base64,AQI=", d.String())

	_, err = core.ParseDataURL("https://cdn.example.com/logo.png")
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.True(t, core.IsDataURL("data:image/png;base64,AA=="))
	assert.False(t, core.IsDataURL("https://x"))
}
