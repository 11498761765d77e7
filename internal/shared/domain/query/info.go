package query

// QueryInfo es una instantánea serializable del estado del Builder.
type QueryInfo struct {
	Table          string       `json:"table"`
	Filters        []FilterInfo `json:"filters"`
	Sorts          []string     `json:"sorts"`
	Includes       []string     `json:"includes"`
	Fields         []string     `json:"fields,omitempty"`
	PaginationType string       `json:"pagination_type"`
	Page           int          `json:"page,omitempty"`
	PerPage        int          `json:"per_page"`
	HasCursor      bool         `json:"has_cursor"`
	Trashed        string       `json:"trashed"`
}

// FilterInfo describe un filtro sin exponer sus valores.
type FilterInfo struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Values   int    `json:"values"`
	Or       bool   `json:"or,omitempty"`
}

// Info resume el Builder. Dos builders con el mismo estado producen el
// mismo QueryInfo.
func (b Builder) Info() QueryInfo {
	info := QueryInfo{
		Filters:  make([]FilterInfo, 0, len(b.filters)),
		Sorts:    make([]string, 0, len(b.sorts)),
		Includes: make([]string, 0, len(b.includes)),
		Fields:   b.Fields(),
		Trashed:  b.trashed.String(),
	}
	if b.entity != nil {
		info.Table = b.entity.TableName()
	}
	for _, f := range b.filters {
		info.Filters = append(info.Filters, FilterInfo{
			Field:    f.Field,
			Operator: string(f.Operator),
			Values:   len(f.Value.List()),
			Or:       f.Or,
		})
	}
	for _, s := range b.sorts {
		info.Sorts = append(info.Sorts, s.String())
	}
	for _, inc := range b.includes {
		info.Includes = append(info.Includes, inc.Relation)
	}
	p := b.effectivePagination()
	info.PaginationType = p.Mode().String()
	info.Page = p.Page()
	info.PerPage = p.PerPage()
	info.HasCursor = p.Cursor() != ""
	return info
}

// ComplexityScore es una heurística 0-100 para diagnóstico.
func ComplexityScore(info QueryInfo) int {
	score := 0
	for _, f := range info.Filters {
		switch Operator(f.Operator).Category() {
		case CategoryPattern:
			score += 8
		case CategorySet, CategoryRange:
			score += 6
		case CategoryRaw:
			score += 10
		default:
			score += 4
		}
		if f.Or {
			score += 2
		}
	}
	score += 3 * len(info.Sorts)
	for _, inc := range info.Includes {
		depth := Include{Relation: inc}.Depth()
		score += 10 + 5*(depth-1)
	}
	switch info.PaginationType {
	case "offset":
		score += 5
		if info.Page > 100 {
			score += 10
		}
	case "cursor":
		score += 2
	}
	if info.Trashed != ExcludeTrashed.String() {
		score += 2
	}
	if score > 100 {
		score = 100
	}
	return score
}

// ComplexityScore calcula la complejidad del estado actual.
func (b Builder) ComplexityScore() int {
	return ComplexityScore(b.Info())
}
