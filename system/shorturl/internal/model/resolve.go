package model

import "fmt"

// ResolveReason 短链不可用的原因
type ResolveReason string

const (
	ReasonNotFound     ResolveReason = "not_found"
	ReasonInactive     ResolveReason = "inactive"
	ReasonExpired      ResolveReason = "expired"
	ReasonNotStarted   ResolveReason = "not_started"
	ReasonLimitReached ResolveReason = "limit_reached"
)

// ResolveError 预期内的解析失败，不作为应用错误记录
type ResolveError struct {
	Slug   string
	Reason ResolveReason
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("短链 %s 不可用: %s", e.Slug, e.Reason)
}

func NewResolveError(slug string, reason ResolveReason) *ResolveError {
	return &ResolveError{Slug: slug, Reason: reason}
}
