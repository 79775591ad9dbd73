package restdb

import (
	"fmt"
	"net/url"
	"strings"
)

// Query accumulates PostgREST query parameters. The zero value selects
// everything.
type Query struct {
	conds  []cond
	order  string
	limit  int
	offset int
	hasLim bool
}

type cond struct {
	column string
	expr   string
}

func NewQuery() Query {
	return Query{}
}

func (q Query) Eq(column string, value any) Query {
	q.conds = append(q.conds, cond{column, fmt.Sprintf("eq.%v", value)})
	return q
}

func (q Query) Gte(column string, value any) Query {
	q.conds = append(q.conds, cond{column, fmt.Sprintf("gte.%v", value)})
	return q
}

func (q Query) Lte(column string, value any) Query {
	q.conds = append(q.conds, cond{column, fmt.Sprintf("lte.%v", value)})
	return q
}

// In builds an `in.(a,b,c)` condition for a batch lookup.
func (q Query) In(column string, values []string) Query {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	q.conds = append(q.conds, cond{column, "in.(" + strings.Join(quoted, ",") + ")"})
	return q
}

func (q Query) Order(column string, desc bool) Query {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	q.order = column + "." + dir
	return q
}

func (q Query) Range(offset, limit int) Query {
	q.offset = offset
	q.limit = limit
	q.hasLim = true
	return q
}

func (q Query) Encode() string {
	v := url.Values{}
	for _, c := range q.conds {
		v.Add(c.column, c.expr)
	}
	if q.order != "" {
		v.Set("order", q.order)
	}
	if q.hasLim {
		v.Set("limit", fmt.Sprintf("%d", q.limit))
		v.Set("offset", fmt.Sprintf("%d", q.offset))
	}
	return v.Encode()
}
