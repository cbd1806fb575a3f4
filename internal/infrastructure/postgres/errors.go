package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
	pqInvalidTextRep     = "22P02"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isInvalidID は不正なUUIDかを返す（呼び出し側は未検出として扱う）
func isInvalidID(err error) bool {
	return pqCode(err) == pqInvalidTextRep
}
