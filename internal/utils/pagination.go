package utils

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

var ErrInvalidPagination = errors.New("limit and offset must be non-negative integers")

// Pagination holds limit/offset paging parameters. A zero limit means no
// limit.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// GetPagination extracts limit and offset from the query parameters. Limits
// above maxLimit are clamped when maxLimit is positive.
func GetPagination(c *fiber.Ctx, maxLimit int) (Pagination, error) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return Pagination{}, err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return Pagination{}, err
	}
	if maxLimit > 0 && (limit == 0 || limit > maxLimit) {
		limit = maxLimit
	}
	return Pagination{Limit: limit, Offset: offset}, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ErrInvalidPagination
	}
	return n, nil
}
