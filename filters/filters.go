// Package filters composes typed WHERE predicates and pagination for list
// endpoints so controllers don't assemble goqu expressions by hand.
package filters

import (
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Eq matches rows whose column equals value.
func Eq(column string, value any) exp.Expression {
	return goqu.I(column).Eq(value)
}

// Contains is a case-insensitive substring match. LIKE wildcards in term
// are matched literally.
func Contains(column, term string) exp.Expression {
	return goqu.I(column).ILike("%" + likeEscaper.Replace(term) + "%")
}

// AnyOf is satisfied when at least one predicate holds.
func AnyOf(predicates ...exp.Expression) exp.Expression {
	return goqu.Or(predicates...)
}

// ContainsAny ORs a Contains predicate for each column.
func ContainsAny(term string, columns ...string) exp.Expression {
	predicates := make([]exp.Expression, 0, len(columns))
	for _, column := range columns {
		predicates = append(predicates, Contains(column, term))
	}
	return AnyOf(predicates...)
}

// Filter is an AND of predicates.
type Filter struct {
	predicates []exp.Expression
}

func New() *Filter {
	return &Filter{}
}

func (f *Filter) Where(predicate exp.Expression) *Filter {
	f.predicates = append(f.predicates, predicate)
	return f
}

// Search adds a ContainsAny predicate unless term is blank.
func (f *Filter) Search(term string, columns ...string) *Filter {
	if term == "" {
		return f
	}
	return f.Where(ContainsAny(term, columns...))
}

func (f *Filter) Empty() bool {
	return len(f.predicates) == 0
}

func (f *Filter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	if f.Empty() {
		return ds
	}
	return ds.Where(f.predicates...)
}

type Page struct {
	Limit  uint
	Offset uint
}

// ParsePage reads limit/offset query values, falling back to defaultLimit and 0.
func ParsePage(limit, offset string, defaultLimit uint) (Page, error) {
	page := Page{Limit: defaultLimit}

	if limit != "" {
		n, err := strconv.ParseUint(limit, 10, 32)
		if err != nil {
			return Page{}, err
		}
		page.Limit = uint(n)
	}

	if offset != "" {
		n, err := strconv.ParseUint(offset, 10, 32)
		if err != nil {
			return Page{}, err
		}
		page.Offset = uint(n)
	}

	return page, nil
}

func (p Page) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.Limit(p.Limit).Offset(p.Offset)
}
