package errors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCloneKeepsCode(t *testing.T) {
	base := NewError(999, "boom")
	cloned := base.Clone().SetData("key", "value")

	require.True(t, base.Equal(cloned))
	require.Equal(t, "value", cloned.Data["key"])
	require.Nil(t, base.Data["key"])
}

func TestErrorSerialize(t *testing.T) {
	e := NewError(998, "bad thing").Clone().SetData("field", "title")

	b, err := e.Serialize()
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &parsed))
	require.Equal(t, float64(998), parsed["code"])
	require.Equal(t, "bad thing", parsed["message"])
}
