package types

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

type CommonFilterOperator string

const (
	CommonFilterOperatorEq     CommonFilterOperator = "eq"
	CommonFilterOperatorNotEq  CommonFilterOperator = "not_eq"
	CommonFilterOperatorLt     CommonFilterOperator = "lt"
	CommonFilterOperatorLte    CommonFilterOperator = "lte"
	CommonFilterOperatorGt     CommonFilterOperator = "gt"
	CommonFilterOperatorGte    CommonFilterOperator = "gte"
	CommonFilterOperatorRange  CommonFilterOperator = "range"
	CommonFilterOperatorIn     CommonFilterOperator = "in"
	CommonFilterOperatorIsNull CommonFilterOperator = "is_null"
)

// ErrInvalidFilter is returned by CommonFilter.Validate.
var ErrInvalidFilter = errors.New("invalid filter")

type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
}

// Validate rejects filters on columns outside allowed.
func (f *CommonFilter) Validate(allowed []string) error {
	if f == nil {
		return fmt.Errorf("%w: nil filter", ErrInvalidFilter)
	}
	if !lo.Contains(allowed, f.Field) {
		return fmt.Errorf("%w: unsupported field %s", ErrInvalidFilter, f.Field)
	}
	if f.Operator != CommonFilterOperatorIsNull && len(f.Values) == 0 {
		return fmt.Errorf("%w: %s %s requires a value", ErrInvalidFilter, f.Field, f.Operator)
	}
	return nil
}

// Build constructs a GORM expression.
func (f *CommonFilter) Build(builder clause.Builder) {
	if f.Operator == CommonFilterOperatorIsNull {
		isNull := len(f.Values) == 0 || fmt.Sprint(f.Values[0]) != "false"
		if isNull {
			clause.Expr{SQL: "? IS NULL", Vars: []any{clause.Column{Name: f.Field}}}.Build(builder)
		} else {
			clause.Expr{SQL: "? IS NOT NULL", Vars: []any{clause.Column{Name: f.Field}}}.Build(builder)
		}
		return
	}
	if len(f.Values) == 0 {
		return
	}

	value := f.Values[0]

	switch f.Operator {
	case CommonFilterOperatorEq:
		clause.Eq{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorNotEq:
		clause.Neq{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorLt:
		clause.Lt{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorLte:
		clause.Lte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorGt:
		clause.Gt{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorGte:
		clause.Gte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorRange:
		if len(f.Values) < 2 {
			return
		}
		clause.And(clause.Gte{Column: f.Field, Value: f.Values[0]}, clause.Lte{Column: f.Field, Value: f.Values[1]}).Build(builder)
	case CommonFilterOperatorIn:
		clause.IN{Column: f.Field, Values: f.Values}.Build(builder)
	}
}

// FiltersAnd combines filters into a single clause.Expression joined by AND.
type FiltersAnd []*CommonFilter

func (w FiltersAnd) Build(builder clause.Builder) {
	if len(w) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w))
	for _, f := range w {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// Page is the paging and ordering part of an admin list request.
type Page struct {
	From      int    `json:"from"`
	Size      int    `json:"size"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// Normalize applies defaults and drops a sort column outside allowed.
func (p *Page) Normalize(allowed []string, defaultSort string) {
	if p.Size <= 0 {
		p.Size = 10
	}
	if p.Size > 500 {
		p.Size = 500
	}
	if p.From < 0 {
		p.From = 0
	}
	if p.SortBy == "" || !lo.Contains(allowed, p.SortBy) {
		p.SortBy = defaultSort
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}
