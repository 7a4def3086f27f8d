package publicapi

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/gdblog/go-blog/validate"
)

const (
	defaultPageNumber = 1
	defaultPageSize   = 10
	maxPageSize       = 50

	// maxPageNumber keeps the offset of a full page inside a postgres integer
	maxPageNumber = math.MaxInt32/maxPageSize + 1
)

// PageRequest selects a page of a listing. Zero or negative values fall back to the defaults
// and page numbers past maxPageNumber are clamped to it.
type PageRequest struct {
	PageNumber int `json:"current" form:"current"`
	PageSize   int `json:"pageSize" form:"pageSize"`
}

// normalize applies the defaults, clamps the page number and rejects page sizes above the maximum
func (p PageRequest) normalize(v *validator.Validate) (PageRequest, error) {
	if p.PageNumber <= 0 {
		p.PageNumber = defaultPageNumber
	}
	if p.PageNumber > maxPageNumber {
		p.PageNumber = maxPageNumber
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}

	// Validate
	if err := validate.ValidateFields(v, validate.ValidationMap{
		"pageSize": validate.WithTag(p.PageSize, fmt.Sprintf("max=%d", maxPageSize)),
	}); err != nil {
		return PageRequest{}, err
	}

	return p, nil
}

func (p PageRequest) offset() int {
	return (p.PageNumber - 1) * p.PageSize
}
