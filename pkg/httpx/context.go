package httpx

import "context"

type ctxKey string

const (
	// CtxKeySubject is the authenticated caller's subject claim.
	CtxKeySubject ctxKey = "subject"
)

// SubjectFromCtx returns the authenticated subject or "" when the request
// was not authenticated.
func SubjectFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}
