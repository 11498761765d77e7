package query

// articleQuery es la entidad de prueba de los tests del paquete.
type articleQuery struct {
	Capabilities
	RelationSet
}

func newArticleQuery() articleQuery {
	return articleQuery{
		Capabilities: Capabilities{
			Table:        "articles",
			Filters:      []string{"id", "title", "status", "views", "published_at"},
			Sorts:        []string{"id", "title", "views", "created_at"},
			Fields:       []string{"id", "title", "status", "views", "author_id"},
			Includes:     []string{"author", "comments", "comments.author"},
			DefaultOrder: &Sort{Field: "created_at", Direction: Desc},
			Types: map[string]FieldType{
				"views":        FieldInt,
				"published_at": FieldTime,
			},
			SoftDelete: "deleted_at",
		},
		RelationSet: RelationSet{
			"author":   {Kind: BelongsTo, Table: "users", Columns: []string{"id", "nombre"}, Eager: true},
			"comments": {Kind: HasMany, Table: "comments", ForeignKey: "article_id"},
		},
	}
}

// plainQuery no implementa ninguna capacidad opcional.
func plainQuery() Capabilities {
	return Capabilities{
		Table:   "logs",
		Filters: []string{"level"},
		Sorts:   []string{"at"},
		Fields:  []string{"id", "level", "at"},
	}
}
