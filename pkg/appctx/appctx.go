// Package appctx stores request-scoped values on a context.Context.
package appctx

import (
	"context"

	"golang.org/x/text/language"
)

type contextKey string

var (
	requestIDKey  = contextKey("X-Request-Id")
	routeKey      = contextKey("X-Route")
	remoteIPKey   = contextKey("X-Remote-Ip")
	operatorIDKey = contextKey("X-Operator-Id")
	localeKey     = contextKey("Accept-Language")
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	return getString(ctx, requestIDKey)
}

func SetRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey, route)
}

func GetRoute(ctx context.Context) string {
	return getString(ctx, routeKey)
}

func SetRemoteIP(ctx context.Context, remoteIP string) context.Context {
	return context.WithValue(ctx, remoteIPKey, remoteIP)
}

func GetRemoteIP(ctx context.Context) string {
	return getString(ctx, remoteIPKey)
}

// SetOperatorID records the console operator making the request.
func SetOperatorID(ctx context.Context, operatorID string) context.Context {
	return context.WithValue(ctx, operatorIDKey, operatorID)
}

func GetOperatorID(ctx context.Context) string {
	return getString(ctx, operatorIDKey)
}

// SetLocale records the negotiated display language.
func SetLocale(ctx context.Context, locale language.Tag) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}

// GetLocale returns the negotiated display language, Russian when none was set.
func GetLocale(ctx context.Context) language.Tag {
	locale, ok := ctx.Value(localeKey).(language.Tag)
	if !ok {
		return language.Russian
	}
	return locale
}

func getString(ctx context.Context, key contextKey) string {
	value, ok := ctx.Value(key).(string)
	if !ok {
		return ""
	}
	return value
}
