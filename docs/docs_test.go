package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDoc(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "CSV Export API", doc.Info.Title)
	for path, method := range map[string]string{
		"/csv":                  "post",
		"/exports/download":     "post",
		"/exports":              "get",
		"/exports/{id}":         "delete",
		"/exports/{id}/content": "get",
		"/exports/{id}/url":     "get",
	} {
		assert.Contains(t, doc.Paths[path], method, path)
	}
}
