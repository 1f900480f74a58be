package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type PaginationParams struct {
	Skip  int `json:"skip" form:"skip"`
	Limit int `json:"limit" form:"limit"`
}

type PaginationMeta struct {
	Skip     int  `json:"skip"`
	Limit    int  `json:"limit"`
	Count    int  `json:"count"`
	HasNext  bool `json:"has_next"`
	NextSkip *int `json:"next_skip,omitempty"`
}

func GetPaginationParams(c *gin.Context) *PaginationParams {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", strconv.Itoa(DefaultSkip)))
	if err != nil || skip < 0 {
		skip = DefaultSkip
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	if err != nil {
		limit = DefaultPageSize
	}
	if limit < MinPageSize {
		limit = MinPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return &PaginationParams{
		Skip:  skip,
		Limit: limit,
	}
}

// CreatePaginationMeta assumes another page exists whenever the current one
// came back full.
func CreatePaginationMeta(params *PaginationParams, count int) *PaginationMeta {
	meta := &PaginationMeta{
		Skip:    params.Skip,
		Limit:   params.Limit,
		Count:   count,
		HasNext: count >= params.Limit,
	}

	if meta.HasNext {
		next := params.Skip + params.Limit
		meta.NextSkip = &next
	}

	return meta
}
