package service

import "github.com/lib/pq"

func uniqueViolation() error {
	return &pq.Error{Code: "23505"}
}

func foreignKeyViolation() error {
	return &pq.Error{Code: "23503"}
}
