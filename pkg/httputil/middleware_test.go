package httputil

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestRecover_WritesInternalError(t *testing.T) {
	handler := Recover(zerolog.Nop())(func(ctx *fasthttp.RequestCtx) {
		panic("boom")
	})

	ctx := &fasthttp.RequestCtx{}
	handler(ctx)

	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())

	var resp Response
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "internal server error", resp.Error)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	called := false
	handler := RequestLogger(zerolog.Nop())(func(ctx *fasthttp.RequestCtx) {
		called = true
		WriteResponseWithStatus(ctx, map[string]string{"id": "1"}, fasthttp.StatusCreated)
	})

	ctx := &fasthttp.RequestCtx{}
	handler(ctx)

	assert.True(t, called)
	assert.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"success":true,"data":{"id":"1"}}`, string(ctx.Response.Body()))
}

func TestDecodeJSON_Invalid(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetBody([]byte("{not json"))

	var dst map[string]string
	err := DecodeJSON(ctx, &dst)
	require.Error(t, err)
	assert.Equal(t, "invalid JSON body", err.Error())
}
