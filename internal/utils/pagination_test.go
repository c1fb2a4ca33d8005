package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timesheet-api/internal/constants"
)

func contextWithQuery(query string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/entries?"+query, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	require.Nil(t, GetPaginationParams(contextWithQuery("")))

	params := GetPaginationParams(contextWithQuery("page=3&limit=10"))
	require.NotNil(t, params)
	require.Equal(t, 3, params.Page)
	require.Equal(t, 10, params.Limit)
	require.Equal(t, 20, params.Offset)

	params = GetPaginationParams(contextWithQuery("page=0&limit=100000"))
	require.Equal(t, 1, params.Page)
	require.Equal(t, constants.DefaultPageSize, params.Limit)
	require.Equal(t, 0, params.Offset)
}
