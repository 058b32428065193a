package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithExtensionDoesNotMutateTemplate(t *testing.T) {
	_ = ErrValidation.WithExtension("fields", map[string]string{"tableNumber": "required"})

	_, ok := ErrValidation.Extensions["fields"]
	require.False(t, ok)
	require.Equal(t, http.StatusBadGateway, HTTPStatusFromError(ErrGateway))
}
