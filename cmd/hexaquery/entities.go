package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
	userDomain "github.com/davicafu/hexaquery/internal/user/domain"
)

// entities son las entidades consultables por nombre de tabla.
var entities = map[string]func() query.Queryable{
	"users": func() query.Queryable { return userDomain.NewUserQuery() },
	"tasks": func() query.Queryable { return taskDomain.NewTaskQuery() },
}

func entityFor(name string) (query.Queryable, error) {
	newEntity, ok := entities[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(entities))
		for n := range entities {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown entity %q (available: %s)", name, strings.Join(names, ", "))
	}
	return newEntity(), nil
}
