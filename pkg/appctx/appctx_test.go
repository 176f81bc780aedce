package appctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Equal(t, language.Russian, GetLocale(ctx))

	ctx = SetRequestID(ctx, "req-1")
	ctx = SetRoute(ctx, "/api/v1/search/:collection")
	ctx = SetRemoteIP(ctx, "10.0.0.1")
	ctx = SetOperatorID(ctx, "operator-7")
	ctx = SetLocale(ctx, language.English)

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "/api/v1/search/:collection", GetRoute(ctx))
	assert.Equal(t, "10.0.0.1", GetRemoteIP(ctx))
	assert.Equal(t, "operator-7", GetOperatorID(ctx))
	assert.Equal(t, language.English, GetLocale(ctx))
}
