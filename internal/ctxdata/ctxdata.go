package ctxdata

import (
	"context"
)

type traceIDKey struct{}
type personKey struct{}

var (
	traceIDKeyInstance = traceIDKey{}
	personKeyInstance  = personKey{}
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKeyInstance, traceID)
}

func GetTraceID(ctx context.Context) (string, bool) {
	v := ctx.Value(traceIDKeyInstance)
	traceID, ok := v.(string)
	return traceID, ok
}

func WithPerson(ctx context.Context, person string) context.Context {
	return context.WithValue(ctx, personKeyInstance, person)
}

func GetPerson(ctx context.Context) (string, bool) {
	v := ctx.Value(personKeyInstance)
	person, ok := v.(string)
	return person, ok
}
