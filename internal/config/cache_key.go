package config

import (
	"fmt"
	"strings"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PublicExamKey returns the cache key for the candidate-facing projection of an exam.
// Codes are case-insensitive for candidates, so the key is normalized.
func (r *CacheKeyStruct) PublicExamKey(examCode string) string {
	return fmt.Sprintf("exam:code:%s:public", strings.ToUpper(examCode))
}

// ExamResultsChannel returns the Redis PubSub channel carrying new results for an exam
func (r *CacheKeyStruct) ExamResultsChannel(examID string) string {
	return fmt.Sprintf("exam:%s:results", examID)
}

var CacheKey = NewCacheKeyStruct()
