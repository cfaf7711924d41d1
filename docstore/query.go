package docstore

// Op is a filter comparison operator.
type Op string

const (
	Eq  Op = "=="
	Gte Op = ">="
	Lte Op = "<="
)

// Direction orders query results on a single field.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter is one field predicate. Field names pass through verbatim; callers
// are expected to use schema field names, not user input.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query describes one store query: a collection, zero or more filters
// combined with AND, an optional single-field order, and an optional limit.
type Query struct {
	Collection string
	Filters    []Filter
	OrderField string
	Dir        Direction
	N          int // 0 means no limit
}

// C starts a query against a collection.
func C(collection string) Query {
	return Query{Collection: collection}
}

// Where adds a filter predicate.
func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(q.Filters[:len(q.Filters):len(q.Filters)], Filter{Field: field, Op: op, Value: value})
	return q
}

// OrderBy sets the ordering field and direction.
func (q Query) OrderBy(field string, dir Direction) Query {
	q.OrderField = field
	q.Dir = dir
	return q
}

// Limit caps the number of returned documents.
func (q Query) Limit(n int) Query {
	q.N = n
	return q
}
